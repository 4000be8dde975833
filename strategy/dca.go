package strategy

import (
	"strings"
	"sync"

	"github.com/rustyeddy/dcabot/indicators"
	"github.com/rustyeddy/dcabot/market"
	"github.com/rustyeddy/dcabot/regime"
	"github.com/rustyeddy/dcabot/risk"
	"github.com/rustyeddy/dcabot/slippage"
)

// DCAConfig holds the tunable parameters of the DCA strategy.
type DCAConfig struct {
	RSIPeriod   int     `json:"rsi-period"`    // 14
	RSIEntryMax float64 `json:"rsi-entry-max"` // 45: loose oversold entry
	RSIExitMin  float64 `json:"rsi-exit-min"`  // 70: overbought exit

	VolumeSMAPeriod int     `json:"volume-sma-period"` // 20
	VolumeFactor    float64 `json:"volume-factor"`     // 0.9 of the SMA

	// DCAThresholds are the loss ratios that trigger each successive
	// DCA rung; rung N fires when FilledEntries == N and the loss has
	// reached DCAThresholds[N-1].
	DCAThresholds []float64 `json:"dca-thresholds"` // {-0.07, -0.12, -0.18}

	// DCAStakeFraction of MaxStake added per rung.
	DCAStakeFraction float64 `json:"dca-stake-fraction"` // 0.5

	// DCAEntryMultiplier scales the proposed stake for DCA-tagged
	// entries.
	DCAEntryMultiplier float64 `json:"dca-entry-multiplier"` // 1.5

	TakeProfitThreshold float64 `json:"take-profit-threshold"`  // 0.08
	TakeProfitSellRatio float64 `json:"take-profit-sell-ratio"` // 0.33

	// Stoploss is the hard loss ratio that, like an explicit
	// stop_loss exit, starts the risk cooldown.
	Stoploss float64 `json:"stoploss"` // -0.20

	MaxSlippage float64 `json:"max-slippage"` // 0.005
}

// DCAConfigDefaults returns the stock parameter set.
func DCAConfigDefaults() DCAConfig {
	return DCAConfig{
		RSIPeriod:           14,
		RSIEntryMax:         45,
		RSIExitMin:          70,
		VolumeSMAPeriod:     20,
		VolumeFactor:        0.9,
		DCAThresholds:       []float64{-0.07, -0.12, -0.18},
		DCAStakeFraction:    0.5,
		DCAEntryMultiplier:  1.5,
		TakeProfitThreshold: 0.08,
		TakeProfitSellRatio: 0.33,
		Stoploss:            -0.20,
		MaxSlippage:         slippage.DefaultMaxSlippage,
	}
}

// DCA buys loose oversold dips and averages down on widening losses,
// with every capital decision gated by the injected risk manager.
type DCA struct {
	cfg      DCAConfig
	risk     *risk.Manager
	regime   *regime.Classifier
	slippage *slippage.Guard

	mu sync.Mutex
	// expectedEntry remembers, per pair, the close price the latest
	// entry signal was generated at, for the slippage gate.
	expectedEntry map[string]float64
}

var _ Strategy = (*DCA)(nil)

// NewDCA builds the strategy around a caller-owned risk manager.
func NewDCA(cfg DCAConfig, rm *risk.Manager) *DCA {
	if len(cfg.DCAThresholds) == 0 {
		cfg.DCAThresholds = DCAConfigDefaults().DCAThresholds
	}
	if cfg.DCAEntryMultiplier <= 0 {
		cfg.DCAEntryMultiplier = 1.5
	}
	return &DCA{
		cfg:           cfg,
		risk:          rm,
		regime:        regime.New(),
		slippage:      slippage.NewGuard(cfg.MaxSlippage),
		expectedEntry: make(map[string]float64),
	}
}

// PopulateSignals computes RSI and volume-SMA entry/exit signals for
// the latest candle and annotates them with the market regime. Entries
// are suppressed in a strong bear regime; a merely bearish label does
// not block dip-buys.
func (s *DCA) PopulateSignals(pair string, candles []market.Candle) (Signals, error) {
	var sig Signals
	if len(candles) == 0 {
		return sig, nil
	}

	closes := market.Closes(candles)
	rsiCol, err := indicators.RSI(closes, s.cfg.RSIPeriod)
	if err != nil {
		return sig, err
	}
	volSMA, err := indicators.SMA(market.Volumes(candles), s.cfg.VolumeSMAPeriod)
	if err != nil {
		return sig, err
	}

	rsi, rsiReady := indicators.Last(rsiCol)
	vol, volReady := indicators.Last(volSMA)
	last := candles[len(candles)-1]

	sig.Regime = regime.Unknown
	suppress := false
	if series, err := s.regime.AddIndicators(candles); err == nil {
		sig.Regime = s.regime.Detect(series)
		suppress = s.regime.SuppressEntry(series)
	}

	if rsiReady {
		sig.RSI = rsi
		if volReady && rsi <= s.cfg.RSIEntryMax && last.Volume > s.cfg.VolumeFactor*vol && !suppress {
			sig.EnterLong = true
		}
		if rsi >= s.cfg.RSIExitMin {
			sig.ExitLong = true
		}
	}

	// Remember the reference price for the slippage gate.
	s.mu.Lock()
	s.expectedEntry[pair] = last.Close
	s.mu.Unlock()

	return sig, nil
}

// SizePosition scales DCA-tagged stakes and runs the position-size and
// portfolio-allocation gates.
func (s *DCA) SizePosition(req SizeRequest) (float64, bool) {
	stake := req.ProposedStake
	if strings.HasPrefix(req.EntryTag, "dca_") {
		stake *= s.cfg.DCAEntryMultiplier
	}

	if !s.risk.CheckPositionSize(stake) {
		return 0, false
	}
	if req.TotalExposure > 0 && !s.risk.CheckPortfolioLimit(stake, req.TotalExposure) {
		return 0, false
	}
	return stake, true
}

// AdjustPosition handles partial take-profit and the DCA rungs.
func (s *DCA) AdjustPosition(req AdjustRequest) (float64, bool) {
	// No averaging down while cooling off after a stoploss.
	if !s.risk.CheckCooldown(req.Now) {
		return 0, false
	}

	if req.CurrentProfit >= s.cfg.TakeProfitThreshold {
		// Negative stake: sell a slice of the position.
		return -req.StakeAmount * s.cfg.TakeProfitSellRatio, true
	}
	if req.CurrentProfit > 0 {
		return 0, false
	}

	rung := req.FilledEntries
	if rung < 1 || rung > len(s.cfg.DCAThresholds) {
		return 0, false
	}
	if req.CurrentProfit <= s.cfg.DCAThresholds[rung-1] {
		return req.MaxStake * s.cfg.DCAStakeFraction, true
	}
	return 0, false
}

// ConfirmEntry runs the consecutive-loss gate and, when a reference
// price was recorded for the pair, the slippage gate.
func (s *DCA) ConfirmEntry(req EntryRequest) bool {
	if !s.risk.CheckConsecutiveLosses() {
		return false
	}

	s.mu.Lock()
	expected, ok := s.expectedEntry[req.Pair]
	s.mu.Unlock()
	if ok && !s.slippage.Check(expected, req.Rate) {
		return false
	}
	return true
}

// ConfirmExit records the trade outcome and starts the cooldown when
// the exit was a stoploss. Exits themselves are never blocked.
func (s *DCA) ConfirmExit(req ExitRequest) bool {
	isLoss := req.CurrentProfit < 0
	s.risk.RecordTradeResult(isLoss)

	if req.ExitReason == "stop_loss" || (isLoss && req.CurrentProfit <= s.cfg.Stoploss) {
		s.risk.TriggerCooldown(req.Now)
	}
	return true
}
