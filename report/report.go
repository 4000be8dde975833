// Package report assembles the daily dry-run monitoring report from
// either the framework API or the trade database fallback.
package report

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/dcabot/botapi"
	"github.com/rustyeddy/dcabot/internal/id"
	"github.com/rustyeddy/dcabot/tradedb"
)

// DailyMetrics is one day's monitoring snapshot.
type DailyMetrics struct {
	ReportID string
	Date     string // "YYYY-MM-DD"

	UptimePercent float64
	TotalTrades   int
	DailyPnL      float64
	CumulativePnL float64
	OpenPositions int
	APIErrors     int
	APITotalCalls int
}

// Format renders the metrics as a fixed-width text report.
func Format(m DailyMetrics) string {
	errorRate := 0.0
	if m.APITotalCalls > 0 {
		errorRate = float64(m.APIErrors) / float64(m.APITotalCalls) * 100
	}

	rule := strings.Repeat("=", 60)
	lines := []string{
		rule,
		fmt.Sprintf("Daily Report - %s", m.Date),
		fmt.Sprintf("Report ID: %s", m.ReportID),
		rule,
		"",
		"UPTIME & STABILITY",
		fmt.Sprintf("  Uptime:           %.1f%%", m.UptimePercent),
		fmt.Sprintf("  API Error Rate:   %.2f%% (%d/%d calls)", errorRate, m.APIErrors, m.APITotalCalls),
		"",
		"TRADING ACTIVITY",
		fmt.Sprintf("  Total Trades:     %d", m.TotalTrades),
		fmt.Sprintf("  Open Positions:   %d", m.OpenPositions),
		"",
		"PROFIT & LOSS",
		fmt.Sprintf("  Daily P&L:        %+.2f", m.DailyPnL),
		fmt.Sprintf("  Cumulative P&L:   %+.2f", m.CumulativePnL),
		"",
		rule,
	}
	return strings.Join(lines, "\n")
}

// CollectFromAPI assembles the metrics for date ("YYYY-MM-DD") from
// the framework API. The profit call decides reachability; the other
// endpoints degrade to zeros individually.
func CollectFromAPI(ctx context.Context, client *botapi.Client, date string) (DailyMetrics, error) {
	profit, err := client.Profit(ctx)
	if err != nil {
		return DailyMetrics{}, fmt.Errorf("report: profit endpoint: %w", err)
	}

	m := DailyMetrics{
		ReportID:      id.New(),
		Date:          date,
		DailyPnL:      profit.ProfitAllCoin,
		CumulativePnL: profit.ProfitAllCoin,
	}

	if open, err := client.Status(ctx); err == nil {
		m.OpenPositions = len(open)
	}

	if trades, err := client.Trades(ctx); err == nil {
		for _, t := range trades {
			if strings.HasPrefix(t.CloseDate, date) {
				m.TotalTrades++
			}
		}
	}

	if logs, err := client.Logs(ctx, 500); err == nil {
		m.APITotalCalls = len(logs)
		for _, e := range logs {
			if e.Level == "ERROR" || strings.Contains(e.Message, "ERROR") {
				m.APIErrors++
			}
		}
	}

	if m.APITotalCalls > 0 {
		m.UptimePercent = 100 - float64(m.APIErrors)/float64(m.APITotalCalls)*100
	} else {
		m.UptimePercent = 100
	}
	return m, nil
}

// dbUptimeEstimate stands in when uptime cannot be derived from the
// database alone.
const dbUptimeEstimate = 95.0

// CollectFromDB assembles the metrics for date from the trade database
// and, optionally, a framework log file for the error counts.
func CollectFromDB(ctx context.Context, db *tradedb.DB, logPath, date string) (DailyMetrics, error) {
	count, dailyPnL, err := db.DailyPnL(ctx, date)
	if err != nil {
		return DailyMetrics{}, err
	}
	cumulative, err := db.CumulativePnL(ctx)
	if err != nil {
		return DailyMetrics{}, err
	}
	open, err := db.OpenPositionCount(ctx)
	if err != nil {
		return DailyMetrics{}, err
	}

	m := DailyMetrics{
		ReportID:      id.New(),
		Date:          date,
		UptimePercent: dbUptimeEstimate,
		TotalTrades:   count,
		DailyPnL:      dailyPnL,
		CumulativePnL: cumulative,
		OpenPositions: open,
	}

	if logPath != "" {
		total, errs := countLogErrors(logPath)
		m.APITotalCalls = total
		m.APIErrors = errs
	}
	return m, nil
}

func countLogErrors(path string) (total, errs int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		total++
		if strings.Contains(scanner.Text(), "ERROR") {
			errs++
		}
	}
	return total, errs
}

// Save writes the report under dir as daily_report_<date>.txt,
// creating the directory if needed, and returns the file path.
func Save(reportText, dir, date string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("daily_report_%s.txt", date))
	if err := os.WriteFile(path, []byte(reportText), 0o644); err != nil {
		return "", fmt.Errorf("report: write file: %w", err)
	}
	return path, nil
}
