package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/audio2txt/errors"
	"github.com/skillsenselab/audio2txt/transcription"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("model"); got != "large-v3" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "zh" {
			t.Errorf("language = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "各位好 今天討論預算",
			"language": "zh",
			"segments": [
				{"start": 0, "end": 4, "text": "各位好", "confidence": 0.93},
				{"start": 4, "end": 9, "text": "今天討論預算", "confidence": 0.88}
			]
		}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	resp, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFixture(t),
		Language:  "zh",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if len(resp.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(resp.Segments))
	}
	if resp.Segments[0].Text != "各位好" || resp.Segments[0].Confidence != 0.93 {
		t.Errorf("segment 0 = %+v", resp.Segments[0])
	}
	if resp.Duration != 9 {
		t.Errorf("Duration = %v, want 9 (derived from last segment)", resp.Duration)
	}
	if resp.Language != "zh" {
		t.Errorf("Language = %q", resp.Language)
	}
}

func TestTranscribe_RequestOverridesConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if got := r.FormValue("model"); got != "base" {
			t.Errorf("model = %q, want base", got)
		}
		if got := r.FormValue("device"); got != "cpu" {
			t.Errorf("device = %q, want cpu", got)
		}
		w.Write([]byte(`{"text": "", "segments": []}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL, Model: "large-v3", Device: "cuda"})
	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFixture(t),
		Model:     "base",
		Device:    "cpu",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
}

func TestTranscribe_UnsupportedFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFixture(t)})
	if !apperrors.IsCode(err, apperrors.ErrCodeUnsupportedAudioFormat) {
		t.Errorf("code = %s, want UNSUPPORTED_AUDIO_FORMAT", apperrors.CodeOf(err))
	}
	if apperrors.IsRetryable(err) {
		t.Error("unsupported format must not be retryable")
	}
}

func TestTranscribe_EngineUnavailable(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // connection refused from here on

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFixture(t)})
	if !apperrors.IsCode(err, apperrors.ErrCodeEngineUnavailable) {
		t.Errorf("code = %s, want ENGINE_UNAVAILABLE", apperrors.CodeOf(err))
	}
	if !apperrors.IsRetryable(err) {
		t.Error("unreachable engine should be retryable")
	}
}

func TestTranscribe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFixture(t)})
	if !apperrors.IsCode(err, apperrors.ErrCodeEngineTimeout) {
		t.Errorf("code = %s, want ENGINE_TIMEOUT", apperrors.CodeOf(err))
	}
}

func TestTranscribe_Cancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(ctx, transcription.Request{AudioPath: writeAudioFixture(t)})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false, want true")
	}

	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() after shutdown = true, want false")
	}
}

func TestFactory(t *testing.T) {
	f := Factory()
	p, err := f(Config{URL: "http://engine:9000", Model: "base"})
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q", p.Name())
	}

	if _, err := f("not a config"); err == nil {
		t.Error("Factory() should reject a mistyped config")
	}
}
