// Package montecarlo estimates how sensitive a backtest's equity curve
// is to trade ordering. Each simulation run shuffles the historical
// per-trade profit sequence into a uniformly random permutation —
// membership is preserved exactly, so the final profit of every run is
// the plain sum — and measures the drawdown that ordering produces.
// The spread of drawdowns is the robustness signal; the profit
// percentiles collapse to the sum by construction.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrNoTrades is returned for an empty trade sequence: there is
// nothing to permute and no drawdown to measure.
var ErrNoTrades = errors.New("montecarlo: trade sequence is empty")

// Result summarizes all simulation runs. Immutable once produced.
type Result struct {
	MedianProfit float64
	CI95Lower    float64
	CI95Upper    float64

	WorstDrawdown  float64
	BestDrawdown   float64
	MedianDrawdown float64

	// RunCount echoes the number of simulations for traceability.
	RunCount int
}

// Run performs sims independent permutation runs over profits, seeded
// once so identical (profits, sims, seed) inputs are bit-identical.
//
// A single-trade sequence cannot be reordered; the result is the
// deterministic single outcome.
func Run(profits []float64, sims int, seed int64) (Result, error) {
	if len(profits) == 0 {
		return Result{}, ErrNoTrades
	}
	if sims <= 0 {
		return Result{}, fmt.Errorf("montecarlo: num simulations must be positive, got %d", sims)
	}

	// One generator, consumed run by run in a fixed order: run N's
	// shuffle never depends on later runs.
	rng := rand.New(rand.NewSource(seed))

	finals := make([]float64, 0, sims)
	drawdowns := make([]float64, 0, sims)
	shuffled := make([]float64, len(profits))

	for i := 0; i < sims; i++ {
		copy(shuffled, profits)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		final, maxDD := equityPath(shuffled)
		finals = append(finals, final)
		drawdowns = append(drawdowns, maxDD)
	}

	sort.Float64s(finals)
	sort.Float64s(drawdowns)

	return Result{
		MedianProfit:   percentile(finals, 50),
		CI95Lower:      percentile(finals, 2.5),
		CI95Upper:      percentile(finals, 97.5),
		WorstDrawdown:  drawdowns[len(drawdowns)-1],
		BestDrawdown:   drawdowns[0],
		MedianDrawdown: percentile(drawdowns, 50),
		RunCount:       sims,
	}, nil
}

// equityPath walks one permutation's cumulative profit curve and
// returns the final profit and the maximum peak-to-trough drawdown.
// The curve starts at zero, so an all-positive sequence has drawdown 0.
func equityPath(profits []float64) (final, maxDrawdown float64) {
	cum := 0.0
	peak := 0.0
	for _, p := range profits {
		cum += p
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return cum, maxDrawdown
}

// percentile computes the p-th percentile of an ascending-sorted slice
// with linear interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
