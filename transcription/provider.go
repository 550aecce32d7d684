package transcription

import (
	"context"

	"github.com/skillsenselab/audio2txt/provider"
)

// Provider is the interface that transcription backends must implement.
// Implementations must not require diarization output and must return
// segments ordered by start time.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
