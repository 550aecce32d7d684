package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillsenselab/audio2txt/transcript"
)

// writeOutputs renders the transcript in each requested format and
// writes the files next to each other under dir. Returns the paths
// written, in the order requested.
func writeOutputs(dir string, formats []string, t *transcript.Transcript) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	base := strings.TrimSuffix(t.Audio.Filename, filepath.Ext(t.Audio.Filename))
	if base == "" {
		base = t.ID
	}

	var written []string
	for _, format := range formats {
		var (
			ext     string
			content []byte
		)
		switch strings.ToLower(format) {
		case "txt", "text":
			ext = ".txt"
			content = []byte(transcript.PlainText(t) + "\n")
		case "srt":
			ext = ".srt"
			content = []byte(transcript.SRT(t))
		case "json":
			ext = ".json"
			data, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encoding transcript: %w", err)
			}
			content = append(data, '\n')
		default:
			return nil, fmt.Errorf("unknown output format %q (want txt, srt, or json)", format)
		}

		path := filepath.Join(dir, base+ext)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
