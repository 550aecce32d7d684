package main

import (
	"github.com/skillsenselab/audio2txt/diarization"
	"github.com/skillsenselab/audio2txt/diarization/pyannote"
	"github.com/skillsenselab/audio2txt/llm"
	"github.com/skillsenselab/audio2txt/llm/ollama"
	"github.com/skillsenselab/audio2txt/transcription"
	"github.com/skillsenselab/audio2txt/transcription/whisper"
)

// Engine backends register here by name; the config's engines section
// selects which backend serves each role.

func newTranscriber(a *app) (transcription.Provider, error) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
	return reg.Create(a.cfg.Engines.Transcription, a.cfg.Whisper)
}

func newDiarizer(a *app) (diarization.Provider, error) {
	reg := diarization.NewRegistry()
	reg.RegisterFactory(pyannote.ProviderName, pyannote.Factory())
	return reg.Create(a.cfg.Engines.Diarization, a.cfg.Pyannote)
}

func newLLM(a *app) (llm.Provider, error) {
	reg := llm.NewRegistry()
	reg.RegisterFactory(ollama.ProviderName, ollama.Factory())
	return reg.Create(a.cfg.Engines.LLM, a.cfg.Ollama)
}
