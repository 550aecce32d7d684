package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillsenselab/audio2txt/analysis"
	"github.com/skillsenselab/audio2txt/transcript"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		solutionID string
		model      string
		output     string
		list       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <transcript.json>",
		Short: "Run an LLM analysis over a finished transcript",
		Long: `Analyze applies a named analysis solution (summary, action items,
keywords) to a transcript JSON file produced by the process command.
The analysis runs against a local Ollama model.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, sol := range analysis.BuiltinSolutions() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", sol.ID, sol.Name)
				}
				return nil
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var t transcript.Transcript
			if err := json.Unmarshal(data, &t); err != nil {
				return fmt.Errorf("parsing transcript %s: %w", args[0], err)
			}

			sol, err := findSolution(solutionID)
			if err != nil {
				return err
			}
			if model != "" {
				sol.Model = model
			}

			llmProvider, err := newLLM(a)
			if err != nil {
				return err
			}
			eng, err := analysis.NewEngine(llmProvider, a.log)
			if err != nil {
				return err
			}

			if output != "" {
				res, err := eng.Analyze(cmd.Context(), &t, sol)
				if err != nil {
					return err
				}
				return os.WriteFile(output, []byte(res.Content+"\n"), 0o644)
			}

			// Stream to the terminal so long generations show progress.
			ch, err := eng.Stream(cmd.Context(), &t, sol)
			if err != nil {
				return err
			}
			for chunk := range ch {
				if chunk.Err != nil {
					return fmt.Errorf("streaming analysis: %w", chunk.Err)
				}
				fmt.Fprint(cmd.OutOrStdout(), chunk.Content)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&solutionID, "solution", "s", "quick_summary", "Analysis solution to run (see --list)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Ollama model override")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&list, "list", false, "List available solutions and exit")
	return cmd
}

func findSolution(id string) (analysis.Solution, error) {
	for _, sol := range analysis.BuiltinSolutions() {
		if sol.ID == id {
			return sol, nil
		}
	}
	return analysis.Solution{}, fmt.Errorf("unknown solution %q (see --list)", id)
}
