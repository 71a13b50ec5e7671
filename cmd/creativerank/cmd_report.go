package main

import (
	"github.com/spf13/cobra"

	"github.com/adscope/creativerank/internal/app"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the static dashboard",
		Long:  "Render ranked tables and scatter charts into a single static HTML file from the scores artifact, optionally including tag hypotheses from the tagged artifact.",
		RunE:  runReport,
	}
	cmd.Flags().String("scores", "out/"+app.ScoresFile, "Path to the scores artifact")
	cmd.Flags().String("tags", "", "Optional path to the tagged artifact")
	cmd.Flags().String("out", "out/"+app.DashboardFile, "Dashboard output path")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setupRun(cmd.Flags())
	if err != nil {
		return err
	}

	scores, _ := cmd.Flags().GetString("scores")
	tags, _ := cmd.Flags().GetString("tags")
	out, _ := cmd.Flags().GetString("out")

	if err := checkInput(scores); err != nil {
		return err
	}

	pipeline := app.NewPipeline(cfg, nil)
	return pipeline.Report(scores, tags, out)
}
