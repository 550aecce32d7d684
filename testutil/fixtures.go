// Package testutil provides shared test fixtures for packages that need
// real audio files on disk.
package testutil

import (
	"math"
	"os"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes a mono 16 kHz 16-bit PCM file of the given length,
// filled with a low-amplitude sine so decoders see plausible samples.
func WriteWAV(t *testing.T, path string, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	n := int(16000 * seconds)
	data := make([]int, n)
	for i := range data {
		data[i] = int(1000 * math.Sin(float64(i)/50))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}
