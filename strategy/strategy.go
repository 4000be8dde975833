// Package strategy holds the decision callbacks the host trading
// framework composes into its order lifecycle. The framework owns the
// event loop, order routing and persistence; a Strategy only answers
// questions: should we enter, how much, and is this fill acceptable.
package strategy

import (
	"time"

	"github.com/rustyeddy/dcabot/market"
	"github.com/rustyeddy/dcabot/regime"
)

// Strategy is the fixed capability surface a strategy exposes to the
// host framework. All methods are synchronous; callbacks for one pair
// are serialized by the framework.
type Strategy interface {
	// PopulateSignals derives entry/exit signals from the latest
	// closed candle of the pair's history.
	PopulateSignals(pair string, candles []market.Candle) (Signals, error)

	// SizePosition gates and adjusts a proposed stake. ok=false means
	// the entry must not proceed.
	SizePosition(req SizeRequest) (stake float64, ok bool)

	// AdjustPosition decides DCA top-ups and partial take-profits for
	// an open trade. A negative stake is a partial sell; ok=false
	// means no adjustment.
	AdjustPosition(req AdjustRequest) (stake float64, ok bool)

	// ConfirmEntry is the final gate before an entry order is placed.
	ConfirmEntry(req EntryRequest) bool

	// ConfirmExit is called exactly once when an exit is confirmed;
	// it records the outcome for the risk state.
	ConfirmExit(req ExitRequest) bool
}

// Signals is the per-candle output of PopulateSignals.
type Signals struct {
	EnterLong bool
	ExitLong  bool

	// Regime annotates the signal with the classifier's label;
	// Unknown when history is too short for EMA-200.
	Regime regime.Regime

	RSI float64
}

// SizeRequest describes a proposed initial or DCA stake.
type SizeRequest struct {
	Pair          string
	Now           time.Time
	ProposedStake float64

	// EntryTag distinguishes DCA entries ("dca_..." prefix) from
	// initial entries.
	EntryTag string

	// TotalExposure is the aggregate stake of existing open
	// positions, for the portfolio allocation gate. Zero skips the
	// gate (no open positions to allocate against).
	TotalExposure float64
}

// AdjustRequest describes an open trade eligible for adjustment.
type AdjustRequest struct {
	Pair string
	Now  time.Time

	// CurrentProfit is the trade's unrealized return as a ratio.
	CurrentProfit float64

	// StakeAmount is the trade's current total stake.
	StakeAmount float64

	// MaxStake is the largest additional stake the framework allows.
	MaxStake float64

	// FilledEntries counts successful entry fills so far (1 = initial
	// entry only).
	FilledEntries int
}

// EntryRequest is the final pre-order check for an entry.
type EntryRequest struct {
	Pair string
	Now  time.Time

	// Rate is the price the order would execute at.
	Rate float64
}

// ExitRequest reports a confirmed exit.
type ExitRequest struct {
	Pair string
	Now  time.Time

	// CurrentProfit is the realized return as a ratio.
	CurrentProfit float64

	ExitReason string
}
