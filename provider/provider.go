// Package provider defines the base contract shared by all engine backends
// (transcription, diarization, llm) and a generic registry for constructing
// them from configuration.
package provider

import "context"

// Provider is the base interface all engine backends must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider instance from its backend-specific
// configuration. Implementations reject config values of the wrong type.
type Factory[T Provider] func(cfg any) (T, error)
