// Package transcription defines the provider interface and common types
// for interacting with speech-to-text backends.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
//	p, err := reg.Create(whisper.ProviderName, cfg)
//	result, err := p.Transcribe(ctx, req)
package transcription
