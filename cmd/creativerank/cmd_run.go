package main

import (
	"github.com/spf13/cobra"

	"github.com/adscope/creativerank/internal/app"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline end to end",
		Long:  "Score, tag, correlate and render in one pass. All artifacts are committed together: a failed run leaves the output directory untouched.",
		RunE:  runAll,
	}
	cmd.Flags().String("input", "", "Path to the raw creative export CSV")
	cmd.Flags().String("out-dir", "out", "Directory for run artifacts")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, err := setupRun(cmd.Flags())
	if err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	outDir, _ := cmd.Flags().GetString("out-dir")

	if err := checkInput(input); err != nil {
		return err
	}

	pipeline := app.NewPipeline(cfg, nil)
	return pipeline.Run(cmd.Context(), input, outDir)
}
