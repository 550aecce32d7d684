package diarization

import (
	"context"

	"github.com/skillsenselab/audio2txt/provider"
)

// Provider is the interface that diarization backends must implement.
// Implementations are independent of the transcription adapter and must
// return turns ordered by start time.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Diarize sends audio for speaker diarization and returns the result.
	Diarize(ctx context.Context, req Request) (*Response, error)
}
