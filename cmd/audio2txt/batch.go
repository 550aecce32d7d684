package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsenselab/audio2txt/audio"
	"github.com/skillsenselab/audio2txt/logger"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags         processFlags
		maxConcurrent int
	)

	cmd := &cobra.Command{
		Use:   "batch <audio-file>...",
		Short: "Transcribe multiple audio files concurrently",
		Long: `Batch runs the processing pipeline over every input with a bounded
number of files in flight. One file's failure never aborts the others;
results are reported per file in input order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := make([]audio.Ref, 0, len(args))
			for _, path := range args {
				ref, err := audio.NewRef(path)
				if err != nil {
					return err
				}
				refs = append(refs, ref)
			}

			if maxConcurrent > 0 {
				a.cfg.Pipeline.MaxConcurrent = maxConcurrent
			}
			pl, err := buildPipeline(a, &flags)
			if err != nil {
				return err
			}
			defer pl.Close()

			results := pl.ProcessBatch(cmd.Context(), refs, flags.processOptions(a))

			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Audio.Filename, res.Err)
					continue
				}
				written, err := writeOutputs(flags.outputDir, flags.formats, res.Transcript)
				if err != nil {
					return err
				}
				for _, path := range written {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}

			a.log.Info("batch finished", logger.Fields(
				"inputs", len(results),
				"failed", failed,
			))
			if failed == len(results) {
				return fmt.Errorf("all %d inputs failed", failed)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Max files processed at once (0 = use config)")
	return cmd
}
