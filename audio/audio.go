// Package audio defines the immutable reference to one input audio file
// and a metadata probe for WAV inputs.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

// Ref identifies one input audio file. It is created once per processing
// request and never mutated afterwards.
type Ref struct {
	// ID is a unique identifier for this input.
	ID string `json:"id"`
	// Path is the absolute path to the audio file.
	Path string `json:"path"`
	// Filename is the base name of the audio file.
	Filename string `json:"filename"`
	// Format is the lowercase file extension without the dot (wav, mp3, ...).
	Format string `json:"format"`
	// SizeBytes is the file size.
	SizeBytes int64 `json:"size_bytes"`
	// Duration is the audio length in seconds. Zero when unknown.
	Duration float64 `json:"duration,omitempty"`
	// SampleRate is the sample rate in Hz. Zero when unknown.
	SampleRate int `json:"sample_rate,omitempty"`
	// Channels is the channel count. Zero when unknown.
	Channels int `json:"channels,omitempty"`
	// CreatedAt records when this reference was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewRef stats the file at path and builds a Ref for it. WAV files are
// probed for duration, sample rate, and channel count; other formats keep
// zero metadata and are passed to the engines as-is.
func NewRef(path string) (Ref, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Ref{}, fmt.Errorf("resolve audio path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Ref{}, fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return Ref{}, fmt.Errorf("audio path is a directory: %s", abs)
	}

	ref := Ref{
		ID:        uuid.NewString(),
		Path:      abs,
		Filename:  filepath.Base(abs),
		Format:    strings.TrimPrefix(strings.ToLower(filepath.Ext(abs)), "."),
		SizeBytes: info.Size(),
		CreatedAt: time.Now().UTC(),
	}

	if ref.Format == "wav" {
		if err := probeWAV(&ref); err != nil {
			return Ref{}, err
		}
	}

	return ref, nil
}

// probeWAV fills Duration, SampleRate, and Channels from the WAV header.
func probeWAV(ref *Ref) error {
	f, err := os.Open(ref.Path)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dur, err := dec.Duration()
	if err != nil {
		return fmt.Errorf("read wav header %s: %w", ref.Filename, err)
	}

	ref.Duration = dur.Seconds()
	ref.SampleRate = int(dec.SampleRate)
	ref.Channels = int(dec.NumChans)
	return nil
}
