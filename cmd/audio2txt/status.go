package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsenselab/audio2txt/observability"
	"github.com/skillsenselab/audio2txt/version"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check reachability of the configured engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			transcriber, err := newTranscriber(a)
			if err != nil {
				return err
			}
			diarizer, err := newDiarizer(a)
			if err != nil {
				return err
			}
			llmProvider, err := newLLM(a)
			if err != nil {
				return err
			}

			health := observability.NewServiceHealth(a.cfg.Base.Name, version.Short())
			health.AddComponent(observability.CheckProvider(ctx, transcriber))

			pya := observability.CheckProvider(ctx, diarizer)
			if pya.Status == observability.HealthStatusDown {
				// Diarization is optional enrichment; a missing sidecar
				// degrades the service rather than taking it down.
				pya.Status = observability.HealthStatusDegraded
			}
			health.AddComponent(pya)

			oll := observability.CheckProvider(ctx, llmProvider)
			if oll.Status == observability.HealthStatusDown {
				oll.Status = observability.HealthStatusDegraded
			}
			health.AddComponent(oll)

			data, err := json.MarshalIndent(health, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			if health.Status == observability.HealthStatusDown {
				return fmt.Errorf("transcription engine is unreachable")
			}
			return nil
		},
	}
}
