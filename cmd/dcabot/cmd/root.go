// Package cmd wires the evaluation tooling into a single dcabot
// binary: backtest analysis, Monte Carlo robustness, dry-run
// acceptance, daily reports and config validation.
package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrNoDataSource means neither the framework API nor the trade
// database could provide data. The binary exits 2 in that case so
// automation can tell "no data" from "criteria failed".
var ErrNoDataSource = errors.New("no data source available")

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dcabot",
	Short: "Risk and robustness evaluation tooling for the DCA trading bot",
	Long: `Dcabot evaluates a DCA crypto trading bot before and during deployment.

It provides tools for:
  - Scoring backtest results against minimum and target criteria
  - Monte Carlo robustness simulation over trade sequences
  - Dry-run acceptance checks against the running bot
  - Daily monitoring reports from the API or trade database
  - Configuration validation with hardcoded-secret detection`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}).Level(level).With().Timestamp().Logger()
	},
}

// Execute runs the root command and returns its error for exit-code
// mapping in main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrNoDataSource) && !errors.Is(err, ErrUnhealthy) {
		log.Error().Err(err).Msg("command failed")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
