// Package slippage validates execution prices against the reference
// price a signal was generated at.
package slippage

import "math"

// DefaultMaxSlippage is the default tolerance as a fraction (0.5%).
const DefaultMaxSlippage = 0.005

// Guard rejects fills whose price deviates from the expected reference
// price by more than a fixed tolerance. It is stateless and safe for
// concurrent use.
type Guard struct {
	maxSlippage float64 // fraction, e.g. 0.005 for 0.5%
}

// NewGuard returns a Guard with the given tolerance fraction.
// Non-positive tolerances fall back to DefaultMaxSlippage.
func NewGuard(maxSlippage float64) *Guard {
	if maxSlippage <= 0 {
		maxSlippage = DefaultMaxSlippage
	}
	return &Guard{maxSlippage: maxSlippage}
}

// SlippagePercent returns (actual-expected)/expected. Positive means
// the fill was worse than expected for a buy. Returns 0 for a
// non-positive expected price; Check rejects those outright.
func (g *Guard) SlippagePercent(expected, actual float64) float64 {
	if expected <= 0 {
		return 0
	}
	return (actual - expected) / expected
}

// Check reports whether the fill price is within tolerance of the
// expected price. Non-positive prices indicate a corrupt upstream
// quote and fail closed.
func (g *Guard) Check(expected, actual float64) bool {
	if expected <= 0 || actual <= 0 {
		return false
	}
	return math.Abs(g.SlippagePercent(expected, actual)) <= g.maxSlippage
}
