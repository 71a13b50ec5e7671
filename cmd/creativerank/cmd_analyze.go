package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adscope/creativerank/internal/app"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Tag creatives and correlate tags with scores",
		Long:  "Read the scores artifact, attach visual-content tags to the top/bottom performers, correlate tag values with composite scores, and write the tagged artifact. Hypotheses are printed to stdout.",
		RunE:  runAnalyze,
	}
	cmd.Flags().String("scores", "out/"+app.ScoresFile, "Path to the scores artifact")
	cmd.Flags().String("out-dir", "out", "Directory for run artifacts")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := setupRun(cmd.Flags())
	if err != nil {
		return err
	}

	scores, _ := cmd.Flags().GetString("scores")
	outDir, _ := cmd.Flags().GetString("out-dir")

	if err := checkInput(scores); err != nil {
		return err
	}

	pipeline := app.NewPipeline(cfg, nil)
	result, err := pipeline.Analyze(cmd.Context(), scores, outDir)
	if err != nil {
		return err
	}

	if len(result.Hypotheses) == 0 {
		fmt.Println("No significant performance differences found between tags.")
		return nil
	}
	for _, h := range result.Hypotheses {
		fmt.Println(h.String())
	}
	return nil
}
