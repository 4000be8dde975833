package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dcabot/botapi"
	"github.com/rustyeddy/dcabot/diagnose"
)

// ErrUnhealthy means at least one diagnostic check errored. The binary
// exits 2 so automation can tell "broken" from "degraded" (exit 1).
var ErrUnhealthy = errors.New("bot is unhealthy")

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run health checks against the deployed bot",
	Long: `Diagnose checks the running bot end to end: API reachability,
trade-database integrity, log freshness, database path consistency and
stale open trades.

Exit codes: 0 healthy, 1 degraded (warnings only), 2 unhealthy (at
least one check errored).

Example:
  dcabot diagnose --root /opt/bot`,
	RunE: runDiagnose,
}

var (
	diagRoot string
	diagLog  string
)

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().StringVar(&diagRoot, "root", ".", "bot project root")
	diagnoseCmd.Flags().StringVar(&diagLog, "log", "", "bot log file (default: <root>/user_data/logs/freqtrade.log)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	client := botapi.NewClient(botapi.ConfigFromEnv())
	report := diagnose.Run(cmd.Context(), client, diagRoot, diagLog, time.Now())

	fmt.Println(diagnose.Format(report))

	switch report.Overall {
	case diagnose.Healthy:
		return nil
	case diagnose.Degraded:
		return fmt.Errorf("bot is degraded")
	default:
		return ErrUnhealthy
	}
}
