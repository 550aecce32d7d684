package transcript

import (
	"github.com/skillsenselab/audio2txt/diarization"
	"github.com/skillsenselab/audio2txt/transcription"
)

// Merge assigns a speaker to each transcribed segment by temporal overlap
// with the diarization turns and returns the merged sequence.
//
// Both inputs must be ordered by start time, which is what the adapters
// guarantee. The output has exactly one entry per input segment, in the
// same order and with the same time spans; text and confidence pass
// through unchanged. A segment overlapped by several turns takes the
// speaker with the largest overlap, ties resolved in favor of the turn
// that starts earlier. A segment with no overlapping turn keeps an empty
// speaker. Touching boundaries do not count as overlap.
//
// The scan is a two-pointer merge over the two sorted sequences, O(T+D).
// Neither input is mutated or re-sorted.
func Merge(segments []transcription.Segment, turns []diarization.Turn) []MergedSegment {
	merged := make([]MergedSegment, len(segments))

	j := 0
	for i, seg := range segments {
		// Turns that end at or before this segment's start can never
		// overlap this or any later segment.
		for j < len(turns) && turns[j].End <= seg.Start {
			j++
		}

		best := ""
		bestOverlap := 0.0
		for k := j; k < len(turns) && turns[k].Start < seg.End; k++ {
			overlap := min(seg.End, turns[k].End) - max(seg.Start, turns[k].Start)
			if overlap > bestOverlap {
				bestOverlap = overlap
				best = turns[k].Speaker
			}
		}

		merged[i] = MergedSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Speaker:    best,
			Confidence: seg.Confidence,
		}
	}

	return merged
}
