package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dcabot/analyze"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a backtest result against minimum and target criteria",
	Long: `Analyze reads a backtest result JSON document and scores its
results_metrics block against two threshold tiers. A strategy that
fails the minimum tier is not fit to deploy; the target tier is the
ideal performance envelope.

Example:
  dcabot analyze --file user_data/backtest_results/latest.json`,
	RunE: runAnalyze,
}

var analyzeFile string

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "path to backtest result JSON (required)")
	analyzeCmd.MarkFlagRequired("file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	metrics, err := analyze.ParseBacktestFile(analyzeFile)
	if err != nil {
		return err
	}

	res := analyze.Evaluate(metrics)

	fmt.Println("Backtest criteria evaluation")
	for _, d := range res.Details {
		fmt.Println("  " + d)
	}
	fmt.Println()

	switch {
	case res.PassedTarget:
		fmt.Println("Result: TARGET - all target criteria met")
	case res.PassedMinimum:
		fmt.Println("Result: MINIMUM - deployable, targets not yet met")
	default:
		fmt.Println("Result: FAIL - minimum criteria not met")
		return fmt.Errorf("backtest failed minimum criteria")
	}
	return nil
}
