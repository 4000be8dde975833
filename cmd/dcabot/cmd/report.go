package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/dcabot/botapi"
	"github.com/rustyeddy/dcabot/report"
	"github.com/rustyeddy/dcabot/tradedb"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the daily monitoring report",
	Long: `Report assembles the daily monitoring snapshot: uptime, trading
activity and realized P&L. Metrics come from the framework REST API
when it is reachable, otherwise from the trade database. With neither
available the command exits 2.

Example:
  dcabot report --date 2026-08-30 --output reports`,
	RunE: runReport,
}

var (
	repDate   string
	repOutput string
	repRoot   string
	repLog    string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&repDate, "date", "", "report date YYYY-MM-DD (default: today)")
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "reports", "output directory")
	reportCmd.Flags().StringVar(&repRoot, "root", ".", "bot project root (for the trade database fallback)")
	reportCmd.Flags().StringVar(&repLog, "log", "", "bot log file for error counting in database mode")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	date := repDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	var (
		metrics report.DailyMetrics
		err     error
	)

	client := botapi.NewClient(botapi.ConfigFromEnv())
	if pingErr := client.Ping(ctx); pingErr == nil {
		metrics, err = report.CollectFromAPI(ctx, client, date)
	} else {
		log.Warn().Err(pingErr).Msg("API unreachable, trying trade database")
		path, ok := tradedb.Find(repRoot)
		if !ok {
			return ErrNoDataSource
		}
		var db *tradedb.DB
		db, err = tradedb.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()
		metrics, err = report.CollectFromDB(ctx, db, repLog, date)
	}
	if err != nil {
		return err
	}

	text := report.Format(metrics)
	fmt.Println(text)

	path, err := report.Save(text, repOutput, date)
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("report saved")
	return nil
}
