package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/dcabot/analyze"
	"github.com/rustyeddy/dcabot/montecarlo"
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Run Monte Carlo robustness simulation over backtest trades",
	Long: `Montecarlo reshuffles the per-trade profit sequence of a backtest
many times and measures the drawdown each ordering produces. A strategy
whose drawdown depends heavily on trade order is fragile even when its
headline profit looks good.

Runs are seeded: the same file, simulation count and seed always
produce identical output.

Example:
  dcabot montecarlo --file latest.json --simulations 1000 --seed 42`,
	RunE: runMontecarlo,
}

var (
	mcFile string
	mcSims int
	mcSeed int64
)

func init() {
	rootCmd.AddCommand(montecarloCmd)

	montecarloCmd.Flags().StringVarP(&mcFile, "file", "f", "", "path to backtest result JSON (required)")
	montecarloCmd.Flags().IntVarP(&mcSims, "simulations", "n", 1000, "number of simulation runs")
	montecarloCmd.Flags().Int64Var(&mcSeed, "seed", 42, "random seed")
	montecarloCmd.MarkFlagRequired("file")
}

func runMontecarlo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(mcFile)
	if err != nil {
		return fmt.Errorf("read backtest result: %w", err)
	}

	profits, err := analyze.ExtractTradeProfits(data)
	if err != nil {
		return err
	}
	log.Debug().Int("trades", len(profits)).Int("simulations", mcSims).Int64("seed", mcSeed).
		Msg("starting simulation")

	res, err := montecarlo.Run(profits, mcSims, mcSeed)
	if err != nil {
		return err
	}

	fmt.Printf("Monte Carlo simulation (%d runs, %d trades)\n", res.RunCount, len(profits))
	fmt.Printf("  Median profit:     %+.2f\n", res.MedianProfit)
	fmt.Printf("  95%% CI:            [%+.2f, %+.2f]\n", res.CI95Lower, res.CI95Upper)
	fmt.Printf("  Median drawdown:   %.2f\n", res.MedianDrawdown)
	fmt.Printf("  Best drawdown:     %.2f\n", res.BestDrawdown)
	fmt.Printf("  Worst drawdown:    %.2f\n", res.WorstDrawdown)
	return nil
}
