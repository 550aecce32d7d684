package transcript

import (
	"reflect"
	"testing"

	"github.com/skillsenselab/audio2txt/diarization"
	"github.com/skillsenselab/audio2txt/transcription"
)

func segs(spans ...[2]float64) []transcription.Segment {
	out := make([]transcription.Segment, len(spans))
	for i, sp := range spans {
		out[i] = transcription.Segment{Start: sp[0], End: sp[1], Text: "t", Confidence: 0.9}
	}
	return out
}

func TestMerge_SingleOverlap(t *testing.T) {
	merged := Merge(
		[]transcription.Segment{{Start: 1, End: 3, Text: "hello", Confidence: 0.8}},
		[]diarization.Turn{{Start: 0, End: 5, Speaker: "SPEAKER_00"}},
	)

	if len(merged) != 1 {
		t.Fatalf("len = %d", len(merged))
	}
	got := merged[0]
	if got.Speaker != "SPEAKER_00" {
		t.Errorf("Speaker = %q", got.Speaker)
	}
	if got.Start != 1 || got.End != 3 || got.Text != "hello" || got.Confidence != 0.8 {
		t.Errorf("segment fields must pass through unchanged: %+v", got)
	}
}

func TestMerge_NoTurns(t *testing.T) {
	merged := Merge(segs([2]float64{0, 4}, [2]float64{4, 9}), nil)
	for i, m := range merged {
		if m.Speaker != "" {
			t.Errorf("segment %d: Speaker = %q, want empty", i, m.Speaker)
		}
	}
}

func TestMerge_NoSpeakerHallucination(t *testing.T) {
	// Segment fully inside a gap between turns stays unattributed and
	// never inherits a neighboring label.
	merged := Merge(
		segs([2]float64{10, 12}),
		[]diarization.Turn{
			{Start: 0, End: 10, Speaker: "SPEAKER_00"},
			{Start: 12, End: 20, Speaker: "SPEAKER_01"},
		},
	)
	if merged[0].Speaker != "" {
		t.Errorf("Speaker = %q, want empty", merged[0].Speaker)
	}
}

func TestMerge_TouchingBoundaryIsNoOverlap(t *testing.T) {
	merged := Merge(
		segs([2]float64{5, 8}),
		[]diarization.Turn{{Start: 0, End: 5, Speaker: "SPEAKER_00"}},
	)
	if merged[0].Speaker != "" {
		t.Errorf("turn ending exactly at segment start must not attribute, got %q", merged[0].Speaker)
	}
}

func TestMerge_LargestOverlapWins(t *testing.T) {
	// Segment [10,20) vs A=[9,15) (overlap 5) and B=[15,21) (overlap 5):
	// a tie, so earlier-starting A wins. Shrink A to force B.
	tests := []struct {
		name  string
		turns []diarization.Turn
		want  string
	}{
		{
			"tie goes to earlier start",
			[]diarization.Turn{
				{Start: 9, End: 15, Speaker: "A"},
				{Start: 15, End: 21, Speaker: "B"},
			},
			"A",
		},
		{
			"strictly larger overlap wins",
			[]diarization.Turn{
				{Start: 12, End: 15, Speaker: "A"}, // overlap 3
				{Start: 15, End: 21, Speaker: "B"}, // overlap 5
			},
			"B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(segs([2]float64{10, 20}), tt.turns)
			if merged[0].Speaker != tt.want {
				t.Errorf("Speaker = %q, want %q", merged[0].Speaker, tt.want)
			}
		})
	}
}

func TestMerge_BudgetMeetingScenario(t *testing.T) {
	segments := []transcription.Segment{
		{Start: 0, End: 4, Text: "各位好"},
		{Start: 4, End: 9, Text: "今天討論預算"},
	}
	turns := []diarization.Turn{
		{Start: 0, End: 5, Speaker: "SPEAKER_01"},
		{Start: 5, End: 10, Speaker: "SPEAKER_02"},
	}

	merged := Merge(segments, turns)

	if merged[0].Speaker != "SPEAKER_01" {
		t.Errorf("segment 1: Speaker = %q, want SPEAKER_01", merged[0].Speaker)
	}
	// Segment 2 overlaps SPEAKER_01 for 1s (4-5) and SPEAKER_02 for 4s
	// (5-9); the overlap-magnitude winner is SPEAKER_02.
	if merged[1].Speaker != "SPEAKER_02" {
		t.Errorf("segment 2: Speaker = %q, want SPEAKER_02", merged[1].Speaker)
	}
}

func TestMerge_CoveragePreservation(t *testing.T) {
	segments := segs(
		[2]float64{0, 2.5},
		[2]float64{2.5, 7},
		[2]float64{8, 11.75},
		[2]float64{12, 30},
	)
	turns := []diarization.Turn{
		{Start: 1, End: 6, Speaker: "SPEAKER_00"},
		{Start: 6, End: 25, Speaker: "SPEAKER_01"},
	}

	merged := Merge(segments, turns)

	if len(merged) != len(segments) {
		t.Fatalf("len = %d, want %d", len(merged), len(segments))
	}
	for i := range segments {
		if merged[i].Start != segments[i].Start || merged[i].End != segments[i].End {
			t.Errorf("segment %d: span [%v,%v) != input [%v,%v)",
				i, merged[i].Start, merged[i].End, segments[i].Start, segments[i].End)
		}
	}
}

func TestMerge_Determinism(t *testing.T) {
	segments := segs([2]float64{0, 4}, [2]float64{4, 9}, [2]float64{9, 15})
	turns := []diarization.Turn{
		{Start: 0, End: 4.5, Speaker: "SPEAKER_00"},
		{Start: 4.5, End: 9, Speaker: "SPEAKER_01"},
		{Start: 9, End: 15, Speaker: "SPEAKER_00"},
	}

	first := Merge(segments, turns)
	second := Merge(segments, turns)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical inputs must be identical")
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	segments := segs([2]float64{0, 4}, [2]float64{4, 9})
	turns := []diarization.Turn{{Start: 0, End: 9, Speaker: "SPEAKER_00"}}

	segsCopy := make([]transcription.Segment, len(segments))
	copy(segsCopy, segments)
	turnsCopy := make([]diarization.Turn, len(turns))
	copy(turnsCopy, turns)

	Merge(segments, turns)

	if !reflect.DeepEqual(segments, segsCopy) {
		t.Error("segments were mutated")
	}
	if !reflect.DeepEqual(turns, turnsCopy) {
		t.Error("turns were mutated")
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) = %v", got)
	}
	if got := Merge(nil, []diarization.Turn{{Start: 0, End: 1, Speaker: "S"}}); len(got) != 0 {
		t.Errorf("Merge with no segments = %v", got)
	}
}

func TestMerge_ManySegmentsOneTurnPointerAdvance(t *testing.T) {
	// A long tail of early turns must not blind later segments.
	var turns []diarization.Turn
	for i := 0; i < 50; i++ {
		turns = append(turns, diarization.Turn{
			Start: float64(i), End: float64(i) + 1, Speaker: "EARLY",
		})
	}
	turns = append(turns, diarization.Turn{Start: 100, End: 110, Speaker: "LATE"})

	merged := Merge(segs([2]float64{102, 104}), turns)
	if merged[0].Speaker != "LATE" {
		t.Errorf("Speaker = %q, want LATE", merged[0].Speaker)
	}
}
