package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/adscope/creativerank/internal/app"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score and rank creatives from a raw export",
		Long:  "Load a raw creative export, derive ratios, apply quality gates, and write the ranked scores artifact plus the run manifest.",
		RunE:  runScore,
	}
	cmd.Flags().String("input", "", "Path to the raw creative export CSV")
	cmd.Flags().String("out-dir", "out", "Directory for run artifacts")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
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
	_, err = pipeline.Score(cmd.Context(), input, outDir)
	return err
}

// checkInput gives the missing-file case a user-facing message instead of
// a raw syscall error.
func checkInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input file %s not found: check the path and that the export was downloaded", path)
		}
		return fmt.Errorf("input file %s: %w", path, err)
	}
	return nil
}
