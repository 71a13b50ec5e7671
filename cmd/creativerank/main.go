package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/adscope/creativerank/internal/config"
)

const (
	appName = "creativerank"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Rank advertising creatives by a weighted composite quality score",
		Version: version,
		Long: `creativerank ingests an advertising-performance export, derives
efficiency and engagement metrics per creative, computes a weighted
batch-relative composite score (0-100), attaches visual-content tags,
correlates tags with performance, and renders a static dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (defaults built in)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("run failed, no artifacts were written")
		os.Exit(1)
	}
}

// setupRun resolves the shared flags into a validated configuration.
func setupRun(flags *pflag.FlagSet) (config.Config, error) {
	verbose, _ := flags.GetBool("verbose")
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	path, _ := flags.GetString("config")
	return config.Load(path)
}
