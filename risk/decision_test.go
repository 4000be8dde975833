package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func violationCodes(d Decision) []string {
	codes := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		codes[i] = v.Code
	}
	return codes
}

func TestEvaluateEntry_AllClear(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	d := m.EvaluateEntry(EntryIntent{
		Now:           time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Stake:         1000,
		TotalExposure: 10_000,
		Balance:       50_000,
	})

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
}

func TestEvaluateEntry_NoStakeShortCircuits(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	d := m.EvaluateEntry(EntryIntent{Stake: 0})

	assert.False(t, d.Allowed)
	require.Len(t, d.Violations, 1)
	assert.Equal(t, "NO_STAKE", d.Violations[0].Code)
}

func TestEvaluateEntry_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	m := newTestManager(t)

	for i := 0; i < 3; i++ {
		m.RecordTradeResult(true)
	}
	m.TriggerCooldown(now)
	m.UpdateBalance(100_000)
	m.RecordDailyLoss(5000, now)

	d := m.EvaluateEntry(EntryIntent{
		Now:           now,
		Stake:         200_000, // over max position size
		TotalExposure: 100_000, // and over the 20% allocation
		Balance:       80_000,  // 20% off peak and daily loss over 5% of balance
	})

	assert.False(t, d.Allowed)
	assert.ElementsMatch(t, []string{
		"POSITION_TOO_LARGE",
		"ALLOCATION_TOO_HIGH",
		"LOSS_STREAK",
		"COOLDOWN_ACTIVE",
		"CIRCUIT_BREAKER",
		"DAILY_LOSS_LIMIT",
	}, violationCodes(d))
}

func TestEvaluateEntry_ZeroExposureSkipsAllocationGate(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	d := m.EvaluateEntry(EntryIntent{
		Now:   time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Stake: 1000,
	})

	// First position of a fresh account: nothing to allocate against
	// and no balance information to judge drawdown by.
	assert.True(t, d.Allowed)
}

func TestEvaluateEntry_DoesNotMutate(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	m.RecordTradeResult(true)
	m.UpdateBalance(10_000)

	before := m.Snapshot()
	for i := 0; i < 5; i++ {
		m.EvaluateEntry(EntryIntent{
			Now:           time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
			Stake:         500,
			TotalExposure: 5000,
			Balance:       9000,
		})
	}
	assert.Equal(t, before, m.Snapshot())
}
