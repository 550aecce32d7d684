// Package analysis applies LLM-backed analysis solutions to finished
// transcripts, producing summaries, action items, and similar derived
// content.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/audio2txt/errors"
	"github.com/skillsenselab/audio2txt/llm"
	"github.com/skillsenselab/audio2txt/logger"
	"github.com/skillsenselab/audio2txt/observability"
	"github.com/skillsenselab/audio2txt/transcript"
	"github.com/skillsenselab/audio2txt/validation"
)

// Engine runs analysis solutions against transcripts using an LLM
// provider.
type Engine struct {
	provider llm.Provider
	log      *logger.Logger
}

// NewEngine creates an analysis engine backed by the given provider.
func NewEngine(p llm.Provider, log *logger.Logger) (*Engine, error) {
	if p == nil {
		return nil, errors.MissingField("provider")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Engine{
		provider: p,
		log:      log.WithComponent("analysis"),
	}, nil
}

// Analyze applies one solution to a transcript. The transcript text is
// substituted into the solution's prompt template and sent to the LLM.
// A provider failure surfaces as a SUMMARIZATION_UNAVAILABLE error; the
// transcript itself is never affected.
func (e *Engine) Analyze(ctx context.Context, t *transcript.Transcript, sol Solution) (*Result, error) {
	req, err := e.buildRequest(t, sol)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanAnalyze, trace.WithAttributes(
		attribute.String(observability.AttrSolution, sol.ID),
		attribute.String(observability.AttrModel, sol.Model),
	))
	defer span.End()

	start := time.Now()
	resp, err := e.provider.Complete(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		observability.SetSpanError(ctx, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.WithError(err).Error("analysis failed", logger.Fields(
			logger.FieldOperation, "analyze",
			"solution", sol.ID,
		))
		return nil, errors.SummarizationUnavailable(err)
	}

	e.log.Info("analysis completed", logger.Fields(
		"solution", sol.ID,
		"model", resp.Model,
		logger.FieldDuration, int64(elapsed*1000),
	))

	return &Result{
		ID:                uuid.New().String(),
		TranscriptID:      t.ID,
		SolutionID:        sol.ID,
		SolutionName:      sol.Name,
		Type:              sol.Type,
		Status:            StatusCompleted,
		Content:           resp.Content,
		ModelUsed:         resp.Model,
		ProcessingSeconds: elapsed,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// Stream applies one solution to a transcript and returns the model
// output as it is produced. The channel closes after the final chunk;
// a chunk with a non-nil Err terminates the stream.
func (e *Engine) Stream(ctx context.Context, t *transcript.Transcript, sol Solution) (<-chan llm.StreamChunk, error) {
	req, err := e.buildRequest(t, sol)
	if err != nil {
		return nil, err
	}

	ch, err := e.provider.Stream(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.WithError(err).Error("analysis stream failed", logger.Fields(
			logger.FieldOperation, "stream",
			"solution", sol.ID,
		))
		return nil, errors.SummarizationUnavailable(err)
	}
	return ch, nil
}

// buildRequest validates the solution and substitutes the transcript
// corpus into its prompt template.
func (e *Engine) buildRequest(t *transcript.Transcript, sol Solution) (llm.CompletionRequest, error) {
	if t == nil {
		return llm.CompletionRequest{}, errors.MissingField("transcript")
	}
	if err := validation.Validate(&sol); err != nil {
		return llm.CompletionRequest{}, err
	}
	corpus := transcript.Corpus(t)
	if corpus == "" {
		return llm.CompletionRequest{}, errors.InvalidInput("transcript", "transcript has no text to analyze")
	}

	prompt := strings.ReplaceAll(sol.PromptTemplate, "{transcript}", corpus)
	return llm.CompletionRequest{
		Model:        sol.Model,
		SystemPrompt: sol.SystemPrompt,
		Temperature:  sol.Temperature,
		MaxTokens:    sol.MaxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	}, nil
}

// AnalyzeAll applies every solution in order, collecting results.
// Individual solution failures are recorded as failed results rather
// than aborting the batch; a cancelled context stops immediately.
func (e *Engine) AnalyzeAll(ctx context.Context, t *transcript.Transcript, sols []Solution) ([]Result, error) {
	results := make([]Result, 0, len(sols))
	for _, sol := range sols {
		res, err := e.Analyze(ctx, t, sol)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			results = append(results, Result{
				ID:           uuid.New().String(),
				TranscriptID: t.ID,
				SolutionID:   sol.ID,
				SolutionName: sol.Name,
				Type:         sol.Type,
				Status:       StatusFailed,
				CreatedAt:    time.Now().UTC(),
			})
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}
