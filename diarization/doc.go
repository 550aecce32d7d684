// Package diarization defines the provider interface and common types
// for interacting with speaker diarization backends.
//
// # Backends
//
//   - diarization/pyannote: pyannote.audio HTTP sidecar
package diarization
