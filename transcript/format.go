package transcript

import (
	"fmt"
	"strings"
)

// PlainText renders one line per segment in the form
// "[MM:SS -> MM:SS][SPEAKER_00]: text". The speaker bracket is omitted
// for unattributed segments.
func PlainText(t *Transcript) string {
	var b strings.Builder
	for i, seg := range t.Segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatClockRange(seg.Start, seg.End))
		if seg.Speaker != "" {
			fmt.Fprintf(&b, "[%s]", seg.Speaker)
		}
		b.WriteString(": ")
		b.WriteString(seg.Text)
	}
	return b.String()
}

// SRT renders the transcript as SubRip subtitles: sequentially numbered
// cues with HH:MM:SS,mmm timestamps. Attributed cues carry a
// "[SPEAKER_00] " prefix.
func SRT(t *Transcript) string {
	var b strings.Builder
	for i, seg := range t.Segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTime(seg.Start), formatSRTTime(seg.End))
		if seg.Speaker != "" {
			fmt.Fprintf(&b, "[%s] ", seg.Speaker)
		}
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Corpus renders the segment texts joined by single spaces, with no
// timestamps or speakers. This is the form fed to the summarization
// collaborator.
func Corpus(t *Transcript) string {
	texts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, " ")
}

// formatClockRange formats "[MM:SS -> MM:SS]".
func formatClockRange(start, end float64) string {
	return fmt.Sprintf("[%s -> %s]", formatClock(start), formatClock(end))
}

func formatClock(seconds float64) string {
	m := int(seconds) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatSRTTime formats "HH:MM:SS,mmm".
func formatSRTTime(seconds float64) string {
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := int(seconds) % 60
	ms := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
