package pipeline

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillsenselab/audio2txt/audio"
	"github.com/skillsenselab/audio2txt/diarization"
	apperrors "github.com/skillsenselab/audio2txt/errors"
	"github.com/skillsenselab/audio2txt/transcription"
)

// inflightGauge tracks the peak number of concurrent calls.
type inflightGauge struct {
	mu      sync.Mutex
	current int
	peak    int
}

func (g *inflightGauge) enter() {
	g.mu.Lock()
	g.current++
	if g.current > g.peak {
		g.peak = g.current
	}
	g.mu.Unlock()
}

func (g *inflightGauge) exit() {
	g.mu.Lock()
	g.current--
	g.mu.Unlock()
}

type fakeTranscriber struct {
	resp   *transcription.Response
	err    error
	delay  time.Duration
	calls  atomic.Int32
	gauge  *inflightGauge
	failOn map[string]error // per-path failures for batch tests
}

func (f *fakeTranscriber) Name() string                       { return "fake-whisper" }
func (f *fakeTranscriber) IsAvailable(_ context.Context) bool { return true }

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	f.calls.Add(1)
	if f.gauge != nil {
		f.gauge.enter()
		defer f.gauge.exit()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.failOn[req.AudioPath]; ok {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeDiarizer struct {
	resp  *diarization.Response
	err   error
	delay time.Duration
	calls atomic.Int32
	gauge *inflightGauge
}

func (f *fakeDiarizer) Name() string                       { return "fake-pyannote" }
func (f *fakeDiarizer) IsAvailable(_ context.Context) bool { return true }

func (f *fakeDiarizer) Diarize(ctx context.Context, _ diarization.Request) (*diarization.Response, error) {
	f.calls.Add(1)
	if f.gauge != nil {
		f.gauge.enter()
		defer f.gauge.exit()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func budgetMeetingEngines() (*fakeTranscriber, *fakeDiarizer) {
	t := &fakeTranscriber{resp: &transcription.Response{
		Text:     "各位好 今天討論預算",
		Language: "zh",
		Duration: 9,
		Segments: []transcription.Segment{
			{Start: 0, End: 4, Text: "各位好", Confidence: 0.93},
			{Start: 4, End: 9, Text: "今天討論預算", Confidence: 0.88},
		},
	}}
	d := &fakeDiarizer{resp: &diarization.Response{
		NumSpeakers: 2,
		Turns: []diarization.Turn{
			{Start: 0, End: 5, Speaker: "SPEAKER_01"},
			{Start: 5, End: 10, Speaker: "SPEAKER_02"},
		},
	}}
	return t, d
}

func testRef() audio.Ref {
	return audio.Ref{ID: "a1", Path: "/tmp/meeting.wav", Filename: "meeting.wav", Duration: 9}
}

func TestNew_RequiresTranscriber(t *testing.T) {
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Error("New(nil, ...) should fail")
	}
}

func TestProcess_MergesSpeakers(t *testing.T) {
	tr, di := budgetMeetingEngines()
	p, err := New(tr, di, Options{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true,
		Parallel:          true,
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(got.Segments) != 2 {
		t.Fatalf("segments = %d", len(got.Segments))
	}
	if got.Segments[0].Speaker != "SPEAKER_01" {
		t.Errorf("segment 1 speaker = %q", got.Segments[0].Speaker)
	}
	if got.Segments[1].Speaker != "SPEAKER_02" {
		t.Errorf("segment 2 speaker = %q, want SPEAKER_02 (largest overlap)", got.Segments[1].Speaker)
	}
	if got.Language != "zh" {
		t.Errorf("Language = %q", got.Language)
	}
	if got.Metadata.TranscriptionEngine != "fake-whisper" || got.Metadata.DiarizationEngine != "fake-pyannote" {
		t.Errorf("engine metadata = %+v", got.Metadata)
	}
	if got.Metadata.Mode != "parallel" {
		t.Errorf("Mode = %q", got.Metadata.Mode)
	}
	if got.Metadata.NumSpeakers != 2 {
		t.Errorf("NumSpeakers = %d", got.Metadata.NumSpeakers)
	}
	if got.Metadata.RealTimeFactor <= 0 {
		t.Errorf("RealTimeFactor = %v, want > 0", got.Metadata.RealTimeFactor)
	}
}

func TestProcess_DiarizationDisabled(t *testing.T) {
	tr, di := budgetMeetingEngines()
	p, _ := New(tr, di, Options{})

	got, err := p.Process(context.Background(), testRef(), ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if di.calls.Load() != 0 {
		t.Error("diarizer must not be called when diarization is disabled")
	}
	for _, seg := range got.Segments {
		if seg.Speaker != "" {
			t.Errorf("speaker = %q, want empty", seg.Speaker)
		}
	}
}

func TestProcess_NilDiarizer(t *testing.T) {
	tr, _ := budgetMeetingEngines()
	p, _ := New(tr, nil, Options{})

	got, err := p.Process(context.Background(), testRef(), ProcessOptions{EnableDiarization: true})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got.Speakers) != 0 {
		t.Errorf("speakers = %v, want none", got.Speakers)
	}
}

func TestProcess_GracefulDegradation(t *testing.T) {
	tr, _ := budgetMeetingEngines()
	di := &fakeDiarizer{err: apperrors.EngineUnavailable("fake-pyannote", nil)}
	p, _ := New(tr, di, Options{})

	got, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true,
		Parallel:          true,
	})
	if err != nil {
		t.Fatalf("degraded run must not fail, got %v", err)
	}
	for _, seg := range got.Segments {
		if seg.Speaker != "" {
			t.Errorf("degraded run should leave speakers empty, got %q", seg.Speaker)
		}
	}
	if len(got.Metadata.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", got.Metadata.Warnings)
	}
}

func TestProcess_StrictDiarization(t *testing.T) {
	tr, _ := budgetMeetingEngines()
	di := &fakeDiarizer{err: apperrors.EngineTimeout("fake-pyannote", nil)}
	p, _ := New(tr, di, Options{StrictDiarization: true})

	_, err := p.Process(context.Background(), testRef(), ProcessOptions{EnableDiarization: true})
	if !apperrors.IsCode(err, apperrors.ErrCodePartialEngineFailure) {
		t.Errorf("code = %s, want PARTIAL_ENGINE_FAILURE", apperrors.CodeOf(err))
	}
}

func TestProcess_TranscriptionFailureIsTotal(t *testing.T) {
	tr := &fakeTranscriber{err: apperrors.EngineUnavailable("fake-whisper", nil)}
	_, di := budgetMeetingEngines()
	p, _ := New(tr, di, Options{})

	_, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true,
		Parallel:          true,
	})
	if !apperrors.IsCode(err, apperrors.ErrCodeTotalFailure) {
		t.Fatalf("code = %s, want TOTAL_FAILURE", apperrors.CodeOf(err))
	}

	var appErr *apperrors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatal("expected AppError")
	}
	if appErr.Details["diarization_succeeded"] != true {
		t.Errorf("failure must report partial state, details = %v", appErr.Details)
	}
}

func TestProcess_ParallelSequentialEquivalence(t *testing.T) {
	tr, di := budgetMeetingEngines()
	p, _ := New(tr, di, Options{})

	parallel, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true, Parallel: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	sequential, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true, Parallel: false,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(parallel.Segments) != len(sequential.Segments) {
		t.Fatalf("segment counts differ: %d vs %d", len(parallel.Segments), len(sequential.Segments))
	}
	for i := range parallel.Segments {
		ps, ss := parallel.Segments[i], sequential.Segments[i]
		if ps.Speaker != ss.Speaker || ps.Text != ss.Text || ps.Start != ss.Start || ps.End != ss.End {
			t.Errorf("segment %d differs: %+v vs %+v", i, ps, ss)
		}
	}
}

func TestProcess_ParallelOverlapsEngineCalls(t *testing.T) {
	gauge := &inflightGauge{}
	tr, di := budgetMeetingEngines()
	tr.delay, tr.gauge = 60*time.Millisecond, gauge
	di.delay, di.gauge = 60*time.Millisecond, gauge
	p, _ := New(tr, di, Options{})

	_, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true, Parallel: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gauge.peak != 2 {
		t.Errorf("peak concurrent engine calls = %d, want 2", gauge.peak)
	}
}

func TestProcess_SequentialNeverOverlaps(t *testing.T) {
	gauge := &inflightGauge{}
	tr, di := budgetMeetingEngines()
	tr.delay, tr.gauge = 30*time.Millisecond, gauge
	di.delay, di.gauge = 30*time.Millisecond, gauge
	p, _ := New(tr, di, Options{})

	_, err := p.Process(context.Background(), testRef(), ProcessOptions{
		EnableDiarization: true, Parallel: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gauge.peak != 1 {
		t.Errorf("peak concurrent engine calls = %d, want 1", gauge.peak)
	}
}

func TestProcess_Cancellation(t *testing.T) {
	tr, di := budgetMeetingEngines()
	tr.delay = time.Second
	di.delay = time.Second
	p, _ := New(tr, di, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := p.Process(ctx, testRef(), ProcessOptions{EnableDiarization: true, Parallel: true})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancellation did not propagate to in-flight engine calls")
	}
}
