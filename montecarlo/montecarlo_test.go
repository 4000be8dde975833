package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	profits := []float64{10, -5, 15, -3, 20}

	a, err := Run(profits, 100, 42)
	require.NoError(t, err)
	b, err := Run(profits, 100, 42)
	require.NoError(t, err)

	// Same inputs, bit-identical output.
	assert.Equal(t, a, b)
}

func TestRun_SeedMatters(t *testing.T) {
	t.Parallel()

	profits := []float64{10, -5, 15, -3, 20, -8, 12, -6, 9, -4}

	a, err := Run(profits, 200, 1)
	require.NoError(t, err)
	b, err := Run(profits, 200, 2)
	require.NoError(t, err)

	// Profit percentiles collapse to the sum either way, but the
	// drawdown distribution depends on which orderings were drawn.
	assert.NotEqual(t, a, b)
}

func TestRun_ProfitIsPermutationInvariant(t *testing.T) {
	t.Parallel()

	profits := []float64{10, -5, 15, -3, 20}
	res, err := Run(profits, 100, 42)
	require.NoError(t, err)

	// Reordering never changes the sum, so every percentile is 37.
	assert.InDelta(t, 37, res.MedianProfit, 1e-9)
	assert.InDelta(t, 37, res.CI95Lower, 1e-9)
	assert.InDelta(t, 37, res.CI95Upper, 1e-9)
	assert.Equal(t, 100, res.RunCount)
}

func TestRun_AllPositiveHasNoDrawdown(t *testing.T) {
	t.Parallel()

	res, err := Run([]float64{5, 3, 8, 2, 7}, 50, 7)
	require.NoError(t, err)

	assert.Zero(t, res.WorstDrawdown)
	assert.Zero(t, res.BestDrawdown)
	assert.Zero(t, res.MedianDrawdown)
	assert.InDelta(t, 25, res.MedianProfit, 1e-9)
}

func TestRun_DrawdownOrdering(t *testing.T) {
	t.Parallel()

	res, err := Run([]float64{10, -5, 15, -3, 20, -12}, 500, 42)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.MedianDrawdown, res.BestDrawdown)
	assert.GreaterOrEqual(t, res.WorstDrawdown, res.MedianDrawdown)

	// The single worst trade is a drawdown floor for any ordering.
	assert.GreaterOrEqual(t, res.BestDrawdown, 12.0)
}

func TestRun_SingleTrade(t *testing.T) {
	t.Parallel()

	res, err := Run([]float64{-4}, 100, 42)
	require.NoError(t, err)

	assert.InDelta(t, -4, res.MedianProfit, 1e-9)
	assert.InDelta(t, 4, res.WorstDrawdown, 1e-9)
	assert.InDelta(t, 4, res.BestDrawdown, 1e-9)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	_, err := Run(nil, 100, 42)
	assert.ErrorIs(t, err, ErrNoTrades)

	_, err = Run([]float64{1}, 0, 42)
	assert.Error(t, err)

	_, err = Run([]float64{1}, -5, 42)
	assert.Error(t, err)
}

func TestEquityPath(t *testing.T) {
	t.Parallel()

	final, dd := equityPath([]float64{10, -15, 5})
	assert.InDelta(t, 0, final, 1e-9)
	assert.InDelta(t, 15, dd, 1e-9)

	// Curve starts at zero, so an opening loss is already a drawdown.
	final, dd = equityPath([]float64{-7, 3})
	assert.InDelta(t, -4, final, 1e-9)
	assert.InDelta(t, 7, dd, 1e-9)
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3, percentile(sorted, 50), 1e-9)
	assert.InDelta(t, 1, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 5, percentile(sorted, 100), 1e-9)
	assert.InDelta(t, 1.1, percentile(sorted, 2.5), 1e-9)
	assert.InDelta(t, 4.9, percentile(sorted, 97.5), 1e-9)
	assert.InDelta(t, 7, percentile([]float64{7}, 50), 1e-9)
}
