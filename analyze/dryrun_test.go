package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingDryRun() DryRunMetrics {
	return DryRunMetrics{
		UptimePercent:   99.5,
		APIErrorRate:    0.2,
		OrderAccuracy:   99.0,
		SharpeDeviation: 0.1,
		DaysRunning:     15,
	}
}

func TestEvaluateDryRun_Pass(t *testing.T) {
	t.Parallel()

	res := EvaluateDryRun(passingDryRun())
	assert.True(t, res.Passed)
	require.NotEmpty(t, res.Details)
	assert.Contains(t, res.Details[len(res.Details)-1], "PASSED")
}

func TestEvaluateDryRun_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*DryRunMetrics)
	}{
		{"uptime below minimum", func(m *DryRunMetrics) { m.UptimePercent = 98.9 }},
		{"error rate at limit", func(m *DryRunMetrics) { m.APIErrorRate = 1.0 }},
		{"order accuracy low", func(m *DryRunMetrics) { m.OrderAccuracy = 97.5 }},
		{"sharpe deviation high", func(m *DryRunMetrics) { m.SharpeDeviation = 0.31 }},
		{"not enough days", func(m *DryRunMetrics) { m.DaysRunning = 13 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := passingDryRun()
			tt.mutate(&m)
			res := EvaluateDryRun(m)
			assert.False(t, res.Passed)
			assert.Contains(t, res.Details[len(res.Details)-1], "FAILED")
		})
	}
}

func TestEvaluateDryRun_Boundaries(t *testing.T) {
	t.Parallel()

	m := DryRunMetrics{
		UptimePercent:   99.0, // inclusive
		APIErrorRate:    0.99, // strict
		OrderAccuracy:   98.0, // inclusive
		SharpeDeviation: 0.3,  // inclusive
		DaysRunning:     14,   // inclusive
	}
	assert.True(t, EvaluateDryRun(m).Passed)
}

func TestUptimeFromTimestamps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	// Steady one-minute heartbeat: full uptime.
	var steady []time.Time
	for i := 0; i < 61; i++ {
		steady = append(steady, base.Add(time.Duration(i)*time.Minute))
	}
	assert.InDelta(t, 100, UptimeFromTimestamps(steady), 1e-9)

	// Half-hour hole in an hour of heartbeats counts as downtime.
	gapped := []time.Time{
		base,
		base.Add(1 * time.Minute),
		base.Add(31 * time.Minute),
		base.Add(60 * time.Minute),
	}
	assert.InDelta(t, 50, UptimeFromTimestamps(gapped), 1.0)

	// Order of the input does not matter.
	shuffled := []time.Time{gapped[2], gapped[0], gapped[3], gapped[1]}
	assert.InDelta(t, UptimeFromTimestamps(gapped), UptimeFromTimestamps(shuffled), 1e-9)
}

func TestUptimeFromTimestamps_Degenerate(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Zero(t, UptimeFromTimestamps(nil))
	assert.Zero(t, UptimeFromTimestamps([]time.Time{base}))
	assert.Zero(t, UptimeFromTimestamps([]time.Time{base, base}))
}

func TestErrorRateFromMessages(t *testing.T) {
	t.Parallel()

	assert.Zero(t, ErrorRateFromMessages(nil))
	assert.InDelta(t, 25, ErrorRateFromMessages([]string{
		"INFO started",
		"ERROR exchange timeout",
		"INFO heartbeat",
		"WARNING retrying",
	}), 1e-9)
}

func TestOrderAccuracy(t *testing.T) {
	t.Parallel()

	trades := []TradeOutcome{
		{Closed: true, ExitReason: "roi"},
		{Closed: true, ExitReason: "exit_signal"},
		{Closed: true, ExitReason: "force_exit"},
		{Closed: true, ExitReason: "emergency_exit"},
		{IsOpen: true}, // open trades are ignored
	}
	assert.InDelta(t, 50, OrderAccuracy(trades), 1e-9)

	assert.InDelta(t, 100, OrderAccuracy(nil), 1e-9)
	assert.InDelta(t, 100, OrderAccuracy([]TradeOutcome{{IsOpen: true}}), 1e-9)
}

func TestSharpeDeviation(t *testing.T) {
	t.Parallel()

	// Fewer than five closed trades: no signal, fixed deviation.
	few := []TradeOutcome{
		{Closed: true, CloseProfit: 0.01},
		{Closed: true, CloseProfit: 0.02},
	}
	assert.InDelta(t, 1.0, SharpeDeviation(few, 1.5), 1e-9)

	// Identical returns: zero live std, live Sharpe treated as zero.
	flat := make([]TradeOutcome, 6)
	for i := range flat {
		flat[i] = TradeOutcome{Closed: true, CloseProfit: 0.01}
	}
	assert.InDelta(t, 0.7, SharpeDeviation(flat, 0.7), 1e-9)

	// Symmetric returns around zero: live Sharpe is zero.
	sym := []TradeOutcome{
		{Closed: true, CloseProfit: 0.02},
		{Closed: true, CloseProfit: -0.02},
		{Closed: true, CloseProfit: 0.01},
		{Closed: true, CloseProfit: -0.01},
		{Closed: true, CloseProfit: 0.03},
		{Closed: true, CloseProfit: -0.03},
	}
	assert.InDelta(t, 0.5, SharpeDeviation(sym, 0.5), 1e-9)
}

func TestDaysRunning(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, DaysRunning(start, start.AddDate(0, 0, 14)))
	assert.Equal(t, 13, DaysRunning(start, start.AddDate(0, 0, 14).Add(-time.Hour)))
	assert.Equal(t, 0, DaysRunning(start, start))
	assert.Equal(t, 0, DaysRunning(start, start.Add(-time.Hour)))
}
