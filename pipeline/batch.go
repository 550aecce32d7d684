package pipeline

import (
	"context"
	"sync"

	"github.com/skillsenselab/audio2txt/audio"
	"github.com/skillsenselab/audio2txt/logger"
	"github.com/skillsenselab/audio2txt/transcript"
)

// BatchResult is the outcome for one input of a batch run. Exactly one
// of Transcript and Err is set.
type BatchResult struct {
	// Audio is the input this result belongs to.
	Audio audio.Ref `json:"audio_ref"`
	// Transcript is the successful result, nil on failure.
	Transcript *transcript.Transcript `json:"transcript,omitempty"`
	// Err is the failure for this input, nil on success.
	Err error `json:"-"`
}

// ProcessBatch runs Process over each input with at most
// Options.MaxConcurrent runs in flight. Results are returned in input
// order regardless of completion order, and one input's failure never
// cancels its siblings. A cancelled context marks the remaining inputs
// with the context error.
func (p *Pipeline) ProcessBatch(ctx context.Context, refs []audio.Ref, opts ProcessOptions) []BatchResult {
	results := make([]BatchResult, len(refs))
	sem := make(chan struct{}, p.opts.MaxConcurrent)

	p.log.Info("processing batch", logger.Fields(
		"inputs", len(refs),
		"max_concurrent", p.opts.MaxConcurrent,
	))

	var wg sync.WaitGroup
	for i, ref := range refs {
		results[i].Audio = ref

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(i int, ref audio.Ref) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i].Transcript, results[i].Err = p.Process(ctx, ref, opts)
		}(i, ref)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	p.log.Info("batch completed", logger.Fields(
		"succeeded", succeeded,
		"inputs", len(refs),
	))

	return results
}
