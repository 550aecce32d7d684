package main

import (
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/skillsenselab/audio2txt/config"
	"github.com/skillsenselab/audio2txt/logger"
	"github.com/skillsenselab/audio2txt/observability"
	"github.com/skillsenselab/audio2txt/version"
)

// app carries state shared by all subcommands, initialized once in the
// root command's PersistentPreRunE.
type app struct {
	cfg    *config.AppConfig
	log    *logger.Logger
	tracer *sdktrace.TracerProvider
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		cfgFile   string
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "audio2txt",
		Short: "Transcribe audio with speaker diarization",
		Long: `audio2txt turns audio recordings into speaker-attributed transcripts.

It drives a faster-whisper sidecar for transcription and a pyannote
sidecar for diarization, merges their outputs by temporal overlap, and
renders plain text, SRT subtitles, or JSON. Finished transcripts can be
summarized through a local Ollama model.`,
		Example: `  audio2txt process meeting.wav
  audio2txt process meeting.wav --language zh --num-speakers 2 -o out/
  audio2txt batch recordings/*.wav --max-concurrent 2
  audio2txt analyze out/meeting.json --solution action_items
  audio2txt status`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.LoaderOption
			if cfgFile != "" {
				opts = append(opts, config.WithConfigFile(cfgFile))
			}
			cfg, err := config.Load(opts...)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if logFormat != "" {
				cfg.Logging.Format = logFormat
			}
			a.cfg = cfg
			a.log = logger.New(&cfg.Logging, cfg.Base.Name)
			logger.SetGlobalLogger(a.log)

			if cfg.Tracing.Enabled {
				tp, err := observability.InitTracer(cmd.Context(), observability.TracerConfig{
					ServiceName:    cfg.Base.Name,
					ServiceVersion: version.Get().Version,
					Environment:    cfg.Base.Environment,
					Endpoint:       cfg.Tracing.Endpoint,
					Insecure:       cfg.Tracing.Insecure,
					SampleRate:     cfg.Tracing.SampleRate,
				})
				if err != nil {
					return err
				}
				a.tracer = tp
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.tracer != nil {
				return a.tracer.Shutdown(cmd.Context())
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (YAML)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")

	root.AddCommand(newProcessCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newStatusCmd(a))

	return root
}
