// Package pipeline orchestrates the transcription and diarization engines
// over one audio input and assembles the merged transcript aggregate.
//
// The two engine calls have no data dependency, so the pipeline can run
// them concurrently; the wall-clock cost of a parallel run is the slower
// of the two engines instead of their sum. Transcription is mandatory,
// diarization is optional enrichment: a failed diarization call degrades
// the run to an unattributed transcript unless strict mode is set.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/audio2txt/audio"
	"github.com/skillsenselab/audio2txt/diarization"
	apperrors "github.com/skillsenselab/audio2txt/errors"
	"github.com/skillsenselab/audio2txt/logger"
	"github.com/skillsenselab/audio2txt/observability"
	"github.com/skillsenselab/audio2txt/transcript"
	"github.com/skillsenselab/audio2txt/transcription"
)

// Options configures a Pipeline.
type Options struct {
	// StrictDiarization fails the run on diarization errors instead of
	// degrading to an unattributed transcript.
	StrictDiarization bool
	// MaxConcurrent bounds concurrent runs in ProcessBatch. Engine
	// sidecars typically wrap one accelerator, so the default is 2.
	MaxConcurrent int
	// Logger overrides the global logger.
	Logger *logger.Logger
}

// ProcessOptions configures one processing run.
type ProcessOptions struct {
	// EnableDiarization requests speaker attribution.
	EnableDiarization bool
	// Parallel runs both engines concurrently. Sequential mode exists for
	// runtimes where the engines share an exclusive hardware resource.
	Parallel bool
	// NumSpeakers fixes the speaker count (0 = auto-detect).
	NumSpeakers int
	// MinSpeakers and MaxSpeakers bound auto-detection.
	MinSpeakers int
	MaxSpeakers int
	// Language hints the audio language to the transcription engine.
	Language string
	// Model overrides the transcription model.
	Model string
	// Device overrides the compute device preference.
	Device string
}

// Pipeline coordinates one transcription provider and an optional
// diarization provider. Providers are bound at construction and shared
// by all runs; the batch concurrency bound is what keeps concurrent use
// within what one provider instance can serve.
type Pipeline struct {
	transcriber transcription.Provider
	diarizer    diarization.Provider
	opts        Options
	log         *logger.Logger
}

// New creates a Pipeline. The transcription provider is mandatory;
// diarizer may be nil, in which case diarization requests are ignored.
func New(transcriber transcription.Provider, diarizer diarization.Provider, opts Options) (*Pipeline, error) {
	if transcriber == nil {
		return nil, apperrors.MissingField("transcription provider")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Pipeline{
		transcriber: transcriber,
		diarizer:    diarizer,
		opts:        opts,
		log:         log.WithComponent("pipeline"),
	}, nil
}

// Close releases provider-held resources for providers that support it.
func (p *Pipeline) Close() error {
	for _, c := range []any{p.transcriber, p.diarizer} {
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Process runs one audio file through the engines and returns the merged
// transcript. It fails with a TOTAL_FAILURE error when transcription
// fails, and with PARTIAL_ENGINE_FAILURE when diarization fails under
// strict mode. A cancelled context aborts both engine calls and returns
// the context error.
func (p *Pipeline) Process(ctx context.Context, ref audio.Ref, opts ProcessOptions) (*transcript.Transcript, error) {
	start := time.Now()
	mode := "sequential"
	useDiarization := opts.EnableDiarization && p.diarizer != nil
	if opts.Parallel && useDiarization {
		mode = "parallel"
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineProcess, trace.WithAttributes(
		attribute.String(observability.AttrAudioFile, ref.Filename),
		attribute.String(observability.AttrMode, mode),
		attribute.Bool(observability.AttrDiarization, useDiarization),
	))
	defer span.End()

	p.log.Info("processing audio", logger.Fields(
		logger.FieldAudio, ref.Filename,
		"mode", mode,
		"diarization", useDiarization,
	))

	res := p.runEngines(ctx, ref, opts, useDiarization)

	if res.transcriptionErr != nil {
		if ctx.Err() != nil {
			span.RecordError(ctx.Err())
			return nil, ctx.Err()
		}
		err := apperrors.TotalFailure(p.transcriber.Name(), res.transcriptionErr).
			WithDetail("diarization_succeeded", useDiarization && res.diarizationErr == nil)
		span.RecordError(err)
		p.log.Error("processing failed", logger.ErrorFields("transcribe", err))
		return nil, err
	}

	md := transcript.Metadata{
		TranscriptionEngine:  p.transcriber.Name(),
		Mode:                 mode,
		TranscriptionSeconds: res.transcriptionDur.Seconds(),
	}

	var turns []diarization.Turn
	if useDiarization {
		md.DiarizationEngine = p.diarizer.Name()
		md.DiarizationSeconds = res.diarizationDur.Seconds()

		switch {
		case res.diarizationErr == nil:
			turns = res.diarizationResp.Turns
			md.NumSpeakers = res.diarizationResp.NumSpeakers
		case ctx.Err() != nil:
			span.RecordError(ctx.Err())
			return nil, ctx.Err()
		case p.opts.StrictDiarization:
			err := apperrors.PartialEngineFailure(p.diarizer.Name(), res.diarizationErr)
			span.RecordError(err)
			return nil, err
		default:
			// Degrade gracefully: unattributed transcript plus a warning.
			md.Warnings = append(md.Warnings,
				fmt.Sprintf("diarization failed, speakers unattributed: %v", res.diarizationErr))
			p.log.Warn("diarization failed, degrading",
				logger.ErrorFields("diarize", res.diarizationErr))
		}
	}

	merged := transcript.Merge(res.transcriptionResp.Segments, turns)

	md.ProcessingSeconds = time.Since(start).Seconds()
	audioDuration := ref.Duration
	if audioDuration == 0 {
		audioDuration = res.transcriptionResp.Duration
	}
	if audioDuration > 0 {
		md.RealTimeFactor = md.ProcessingSeconds / audioDuration
	}

	t := transcript.New(ref, merged, res.transcriptionResp.Language, md)

	span.SetAttributes(
		attribute.Int(observability.AttrSegments, len(t.Segments)),
		attribute.Int(observability.AttrSpeakers, len(t.Speakers)),
		attribute.Float64(observability.AttrRTF, md.RealTimeFactor),
	)
	p.log.Info("processing completed", logger.Fields(
		logger.FieldAudio, ref.Filename,
		logger.FieldSegments, len(t.Segments),
		logger.FieldSpeakers, len(t.Speakers),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))

	return t, nil
}

// engineResults carries the joined outcome of both engine calls.
type engineResults struct {
	transcriptionResp *transcription.Response
	transcriptionErr  error
	transcriptionDur  time.Duration

	diarizationResp *diarization.Response
	diarizationErr  error
	diarizationDur  time.Duration
}

// runEngines executes both engine calls, concurrently when requested.
// The two goroutines share no state; results meet only at the join.
func (p *Pipeline) runEngines(ctx context.Context, ref audio.Ref, opts ProcessOptions, useDiarization bool) engineResults {
	treq := transcription.Request{
		AudioPath: ref.Path,
		Language:  opts.Language,
		Model:     opts.Model,
		Device:    opts.Device,
	}
	dreq := diarization.Request{
		AudioPath:   ref.Path,
		NumSpeakers: opts.NumSpeakers,
		MinSpeakers: opts.MinSpeakers,
		MaxSpeakers: opts.MaxSpeakers,
	}

	var res engineResults

	if !useDiarization {
		res.transcriptionResp, res.transcriptionDur, res.transcriptionErr = p.transcribe(ctx, treq)
		return res
	}

	if opts.Parallel {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			res.transcriptionResp, res.transcriptionDur, res.transcriptionErr = p.transcribe(ctx, treq)
		}()
		go func() {
			defer wg.Done()
			res.diarizationResp, res.diarizationDur, res.diarizationErr = p.diarize(ctx, dreq)
		}()
		wg.Wait()
		return res
	}

	res.transcriptionResp, res.transcriptionDur, res.transcriptionErr = p.transcribe(ctx, treq)
	res.diarizationResp, res.diarizationDur, res.diarizationErr = p.diarize(ctx, dreq)
	return res
}

// transcribe wraps the transcription call in its own span.
func (p *Pipeline) transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, time.Duration, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe, trace.WithAttributes(
		attribute.String(observability.AttrEngine, p.transcriber.Name()),
	))
	defer span.End()

	s := time.Now()
	resp, err := p.transcriber.Transcribe(ctx, req)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return resp, time.Since(s), err
}

// diarize wraps the diarization call in its own span.
func (p *Pipeline) diarize(ctx context.Context, req diarization.Request) (*diarization.Response, time.Duration, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDiarize, trace.WithAttributes(
		attribute.String(observability.AttrEngine, p.diarizer.Name()),
	))
	defer span.End()

	s := time.Now()
	resp, err := p.diarizer.Diarize(ctx, req)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return resp, time.Since(s), err
}
