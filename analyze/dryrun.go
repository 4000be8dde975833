package analyze

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Dry-run acceptance criteria. The bot must have behaved like
// production for two weeks before a backtest result is trusted.
const (
	MinUptimePercent   = 99.0
	MaxAPIErrorRate    = 1.0
	MinOrderAccuracy   = 98.0
	MaxSharpeDeviation = 0.3
	MinDaysRunning     = 14

	// Log gaps longer than this count as downtime.
	uptimeGapThreshold = 5 * time.Minute
)

// DryRunMetrics are collected from a running dry-run session.
type DryRunMetrics struct {
	UptimePercent   float64
	APIErrorRate    float64
	OrderAccuracy   float64
	SharpeDeviation float64
	DaysRunning     int
}

// DryRunResult is the outcome of evaluating DryRunMetrics.
type DryRunResult struct {
	Passed  bool
	Details []string
}

// EvaluateDryRun checks dry-run metrics against the acceptance
// criteria above.
func EvaluateDryRun(m DryRunMetrics) DryRunResult {
	res := DryRunResult{Passed: true}
	check := func(ok bool, okLine, failLine string) {
		if ok {
			res.Details = append(res.Details, "✓ "+okLine)
		} else {
			res.Details = append(res.Details, "✗ "+failLine)
			res.Passed = false
		}
	}

	check(m.UptimePercent >= MinUptimePercent,
		fmt.Sprintf("Uptime: %.1f%% (>= %.0f%%)", m.UptimePercent, MinUptimePercent),
		fmt.Sprintf("Uptime: %.1f%% (< %.0f%%)", m.UptimePercent, MinUptimePercent))
	check(m.APIErrorRate < MaxAPIErrorRate,
		fmt.Sprintf("API error rate: %.2f%% (< %.0f%%)", m.APIErrorRate, MaxAPIErrorRate),
		fmt.Sprintf("API error rate: %.2f%% (>= %.0f%%)", m.APIErrorRate, MaxAPIErrorRate))
	check(m.OrderAccuracy >= MinOrderAccuracy,
		fmt.Sprintf("Order accuracy: %.1f%% (>= %.0f%%)", m.OrderAccuracy, MinOrderAccuracy),
		fmt.Sprintf("Order accuracy: %.1f%% (< %.0f%%)", m.OrderAccuracy, MinOrderAccuracy))
	check(m.SharpeDeviation <= MaxSharpeDeviation,
		fmt.Sprintf("Sharpe deviation: %.2f (<= %.1f)", m.SharpeDeviation, MaxSharpeDeviation),
		fmt.Sprintf("Sharpe deviation: %.2f (> %.1f)", m.SharpeDeviation, MaxSharpeDeviation))
	check(m.DaysRunning >= MinDaysRunning,
		fmt.Sprintf("Running period: %d days (>= %d days)", m.DaysRunning, MinDaysRunning),
		fmt.Sprintf("Running period: %d days (< %d days)", m.DaysRunning, MinDaysRunning))

	if res.Passed {
		res.Details = append(res.Details, "✓ Dry run PASSED - ready for backtest evaluation")
	} else {
		res.Details = append(res.Details, "✗ Dry run FAILED - continue monitoring")
	}
	return res
}

// UptimeFromTimestamps estimates uptime from log timestamps: any gap
// longer than five minutes between consecutive entries is counted as
// downtime. Fewer than two timestamps yields 0.
func UptimeFromTimestamps(stamps []time.Time) float64 {
	if len(stamps) < 2 {
		return 0
	}

	sorted := make([]time.Time, len(stamps))
	copy(sorted, stamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	span := sorted[len(sorted)-1].Sub(sorted[0])
	if span <= 0 {
		return 0
	}

	var gaps time.Duration
	for i := 1; i < len(sorted); i++ {
		if diff := sorted[i].Sub(sorted[i-1]); diff > uptimeGapThreshold {
			gaps += diff
		}
	}

	uptime := float64(span-gaps) / float64(span) * 100
	return math.Max(uptime, 0)
}

// ErrorRateFromMessages returns the percentage of log messages that
// contain "ERROR". An empty list yields 0.
func ErrorRateFromMessages(messages []string) float64 {
	if len(messages) == 0 {
		return 0
	}
	errs := 0
	for _, msg := range messages {
		if strings.Contains(msg, "ERROR") {
			errs++
		}
	}
	return float64(errs) / float64(len(messages)) * 100
}

// OrderAccuracy returns the percentage of closed trades that exited
// normally. Forced and emergency exits count as abnormal; DCA
// replacements are normal. No closed trades yields 100.
func OrderAccuracy(trades []TradeOutcome) float64 {
	closed := 0
	abnormal := 0
	for _, t := range trades {
		if !t.Closed {
			continue
		}
		closed++
		if t.ExitReason == "force_exit" || t.ExitReason == "emergency_exit" {
			abnormal++
		}
	}
	if closed == 0 {
		return 100
	}
	return float64(closed-abnormal) / float64(closed) * 100
}

// SharpeDeviation returns |live sharpe - backtest sharpe| where the
// live Sharpe is mean/std of closed-trade returns. Fewer than five
// closed trades yields 1.0 — not enough signal to compare.
func SharpeDeviation(trades []TradeOutcome, backtestSharpe float64) float64 {
	var returns []float64
	for _, t := range trades {
		if !t.IsOpen && t.Closed {
			returns = append(returns, t.CloseProfit)
		}
	}
	if len(returns) < 5 {
		return 1.0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)

	live := 0.0
	if std > 0 {
		live = mean / std
	}
	return math.Abs(live - backtestSharpe)
}

// DaysRunning counts whole days elapsed between start and now.
func DaysRunning(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start).Hours() / 24)
}
