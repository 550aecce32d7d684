package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillsenselab/audio2txt/audio"
	"github.com/skillsenselab/audio2txt/diarization"
	"github.com/skillsenselab/audio2txt/logger"
	"github.com/skillsenselab/audio2txt/pipeline"
	"github.com/skillsenselab/audio2txt/resilience"
	"github.com/skillsenselab/audio2txt/transcript"
)

// processFlags holds the per-run options shared by process and batch.
type processFlags struct {
	outputDir      string
	formats        []string
	noDiarization  bool
	sequential     bool
	strict         bool
	language       string
	model          string
	device         string
	numSpeakers    int
	minSpeakers    int
	maxSpeakers    int
}

func (f *processFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", ".", "Directory for output files")
	cmd.Flags().StringSliceVarP(&f.formats, "format", "f", []string{"txt"}, "Output formats: txt, srt, json (repeatable)")
	cmd.Flags().BoolVar(&f.noDiarization, "no-diarization", false, "Skip speaker diarization")
	cmd.Flags().BoolVar(&f.sequential, "sequential", false, "Run engines one after another instead of in parallel")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail the run when diarization fails instead of degrading")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Audio language hint (e.g. en, zh)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Transcription model override")
	cmd.Flags().StringVar(&f.device, "device", "", "Compute device (cpu, cuda)")
	cmd.Flags().IntVar(&f.numSpeakers, "num-speakers", 0, "Exact number of speakers (0 = auto)")
	cmd.Flags().IntVar(&f.minSpeakers, "min-speakers", 0, "Minimum speakers for auto-detection")
	cmd.Flags().IntVar(&f.maxSpeakers, "max-speakers", 0, "Maximum speakers for auto-detection")
}

// buildPipeline assembles the engine providers and pipeline from the
// loaded configuration plus command-line overrides.
func buildPipeline(a *app, f *processFlags) (*pipeline.Pipeline, error) {
	transcriber, err := newTranscriber(a)
	if err != nil {
		return nil, err
	}

	var diarizer diarization.Provider
	if !f.noDiarization {
		diarizer, err = newDiarizer(a)
		if err != nil {
			return nil, err
		}
	}

	return pipeline.New(transcriber, diarizer, pipeline.Options{
		StrictDiarization: f.strict || a.cfg.Pipeline.StrictDiarization,
		MaxConcurrent:     a.cfg.Pipeline.MaxConcurrent,
		Logger:            a.log,
	})
}

func (f *processFlags) processOptions(a *app) pipeline.ProcessOptions {
	parallel := !a.cfg.Pipeline.Sequential
	if f.sequential {
		parallel = false
	}
	return pipeline.ProcessOptions{
		EnableDiarization: !f.noDiarization,
		Parallel:          parallel,
		NumSpeakers:       f.numSpeakers,
		MinSpeakers:       f.minSpeakers,
		MaxSpeakers:       f.maxSpeakers,
		Language:          f.language,
		Model:             f.model,
		Device:            f.device,
	}
}

func newProcessCmd(a *app) *cobra.Command {
	var (
		flags   processFlags
		retries int
	)

	cmd := &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Transcribe a single audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := audio.NewRef(args[0])
			if err != nil {
				return err
			}

			pl, err := buildPipeline(a, &flags)
			if err != nil {
				return err
			}
			defer pl.Close()

			if retries < 1 {
				retries = 1
			}
			retryCfg := resilience.DefaultRetryConfig()
			retryCfg.MaxAttempts = retries
			retryCfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
				a.log.Warn("retrying after transient failure", logger.Fields(
					"attempt", attempt,
					"backoff", backoff.String(),
					logger.FieldError, err.Error(),
				))
			}

			t, err := resilience.Retry(cmd.Context(), retryCfg, func() (*transcript.Transcript, error) {
				return pl.Process(cmd.Context(), ref, flags.processOptions(a))
			})
			if err != nil {
				return err
			}

			written, err := writeOutputs(flags.outputDir, flags.formats, t)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			for _, w := range t.Metadata.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&retries, "retries", 1, "Attempts for transient engine failures (1 = no retry)")
	return cmd
}
