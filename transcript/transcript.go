// Package transcript holds the speaker-attributed transcript aggregate,
// the merge algorithm that builds it from transcription and diarization
// output, and the renderers that format it.
package transcript

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/audio2txt/audio"
)

// MergedSegment is one speaker-attributed transcribed span, the atomic
// unit of a Transcript. Built only by Merge.
type MergedSegment struct {
	// ID is a per-transcript segment identifier.
	ID string `json:"id,omitempty"`
	// Start is the segment start time in seconds.
	Start float64 `json:"start_seconds"`
	// End is the segment end time in seconds.
	End float64 `json:"end_seconds"`
	// Text is the transcribed text, copied verbatim from the
	// transcription engine.
	Text string `json:"text"`
	// Speaker is the attributed speaker label. Empty means no speaker
	// was attributed; it serializes as a JSON null.
	Speaker string `json:"-"`
	// Confidence is the engine-supplied score, passed through unchanged.
	Confidence float64 `json:"confidence"`
}

// Duration returns the segment length in seconds.
func (s MergedSegment) Duration() float64 { return s.End - s.Start }

// MarshalJSON emits speaker_id as null when no speaker was attributed.
func (s MergedSegment) MarshalJSON() ([]byte, error) {
	type alias MergedSegment
	var speaker *string
	if s.Speaker != "" {
		speaker = &s.Speaker
	}
	return json.Marshal(struct {
		alias
		SpeakerID *string `json:"speaker_id"`
	}{alias(s), speaker})
}

// UnmarshalJSON accepts the nullable speaker_id wire form.
func (s *MergedSegment) UnmarshalJSON(data []byte) error {
	type alias MergedSegment
	aux := struct {
		*alias
		SpeakerID *string `json:"speaker_id"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.SpeakerID != nil {
		s.Speaker = *aux.SpeakerID
	}
	return nil
}

// Speaker aggregates per-speaker statistics over one transcript.
type Speaker struct {
	// ID is the engine-local speaker label.
	ID string `json:"id"`
	// TotalSpeakingTime is the summed duration of this speaker's segments,
	// in seconds.
	TotalSpeakingTime float64 `json:"total_speaking_time"`
	// SegmentCount is the number of segments attributed to this speaker.
	SegmentCount int `json:"segment_count"`
}

// Metadata carries processing facts recorded by the pipeline.
type Metadata struct {
	// TranscriptionEngine is the name of the transcription backend used.
	TranscriptionEngine string `json:"transcription_engine,omitempty"`
	// DiarizationEngine is the name of the diarization backend used, if any.
	DiarizationEngine string `json:"diarization_engine,omitempty"`
	// Mode records how the engines were scheduled: "parallel" or "sequential".
	Mode string `json:"mode,omitempty"`
	// TranscriptionSeconds is the wall-clock time of the transcription call.
	TranscriptionSeconds float64 `json:"transcription_seconds,omitempty"`
	// DiarizationSeconds is the wall-clock time of the diarization call.
	DiarizationSeconds float64 `json:"diarization_seconds,omitempty"`
	// ProcessingSeconds is the wall-clock time of the whole run.
	ProcessingSeconds float64 `json:"processing_seconds,omitempty"`
	// RealTimeFactor is ProcessingSeconds divided by the audio duration.
	// Zero when the audio duration is unknown.
	RealTimeFactor float64 `json:"real_time_factor,omitempty"`
	// NumSpeakers is the speaker count reported by the diarization engine.
	NumSpeakers int `json:"num_speakers,omitempty"`
	// Warnings records non-fatal problems, such as a degraded run where
	// diarization failed.
	Warnings []string `json:"warnings,omitempty"`
}

// Transcript is the immutable aggregate of one processing run. Renderers
// and downstream consumers read it; nothing mutates it after construction.
type Transcript struct {
	// ID is a unique identifier for this transcript.
	ID string `json:"id"`
	// Audio references the processed input.
	Audio audio.Ref `json:"audio_ref"`
	// Segments is the ordered sequence of merged segments.
	Segments []MergedSegment `json:"segments"`
	// Speakers lists per-speaker statistics, sorted by speaker ID.
	Speakers []Speaker `json:"speakers,omitempty"`
	// Language is the dominant language of the transcript.
	Language string `json:"language,omitempty"`
	// CreatedAt records when the transcript was constructed.
	CreatedAt time.Time `json:"created_at"`
	// Metadata carries processing facts for this run.
	Metadata Metadata `json:"processing_metadata"`
}

// New builds the Transcript aggregate from merged segments. Segment IDs
// are assigned sequentially so two runs over the same input produce the
// same segment identities; speaker statistics are derived here.
func New(ref audio.Ref, segments []MergedSegment, language string, md Metadata) *Transcript {
	segs := make([]MergedSegment, len(segments))
	copy(segs, segments)
	for i := range segs {
		segs[i].ID = fmt.Sprintf("seg-%04d", i+1)
	}

	return &Transcript{
		ID:        uuid.NewString(),
		Audio:     ref,
		Segments:  segs,
		Speakers:  speakerStats(segs),
		Language:  language,
		CreatedAt: time.Now().UTC(),
		Metadata:  md,
	}
}

// FullText returns the plain text of all segments joined by spaces.
func (t *Transcript) FullText() string {
	return Corpus(t)
}

// SpeakerSegments returns the segments attributed to one speaker, in order.
func (t *Transcript) SpeakerSegments(speakerID string) []MergedSegment {
	var out []MergedSegment
	for _, seg := range t.Segments {
		if seg.Speaker == speakerID {
			out = append(out, seg)
		}
	}
	return out
}

func speakerStats(segments []MergedSegment) []Speaker {
	byID := make(map[string]*Speaker)
	for _, seg := range segments {
		if seg.Speaker == "" {
			continue
		}
		sp, ok := byID[seg.Speaker]
		if !ok {
			sp = &Speaker{ID: seg.Speaker}
			byID[seg.Speaker] = sp
		}
		sp.TotalSpeakingTime += seg.Duration()
		sp.SegmentCount++
	}

	out := make([]Speaker, 0, len(byID))
	for _, sp := range byID {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
