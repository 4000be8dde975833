// Package regime labels the prevailing market trend from EMA-50/EMA-200
// ordering and ADX trend strength, and derives an entry-suppression
// decision for strong bear markets.
package regime

import (
	"fmt"
	"math"

	"github.com/rustyeddy/dcabot/indicators"
	"github.com/rustyeddy/dcabot/market"
)

// Regime is a coarse label for the prevailing price trend.
type Regime int

const (
	// Unknown means there is not enough history to classify.
	Unknown Regime = iota
	Sideways
	Bullish
	Bearish
)

func (r Regime) String() string {
	switch r {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	case Sideways:
		return "sideways"
	default:
		return "unknown"
	}
}

const (
	emaFastPeriod = 50
	emaSlowPeriod = 200
	adxPeriod     = 14
	rsiPeriod     = 14
)

// Series holds indicator columns aligned with the candles they were
// computed from. Entries inside an indicator's warmup window are NaN.
type Series struct {
	Candles []market.Candle

	EMA50  []float64
	EMA200 []float64
	ADX    []float64
	RSI    []float64
}

// Classifier detects the market regime from a Series snapshot.
// Thresholds default to those of New; a zero Classifier is not usable.
type Classifier struct {
	// WeakADX is the trendless threshold: below it the market is
	// always sideways, whatever the EMA ordering says.
	WeakADX float64

	// StrongADX must be exceeded before an EMA ordering counts as a
	// trend. Between WeakADX and StrongADX the regime is sideways.
	StrongADX float64

	// SuppressADX is the stricter threshold for entry suppression.
	// Suppression is deliberately more conservative than a plain
	// bearish label so it does not block every dip-buy.
	SuppressADX float64

	// RSIFloor exempts extreme oversold conditions from suppression.
	RSIFloor float64
}

// New returns a Classifier with the default thresholds
// (weak 20, strong 25, suppress 35, RSI floor 15).
func New() *Classifier {
	return &Classifier{
		WeakADX:     20,
		StrongADX:   25,
		SuppressADX: 35,
		RSIFloor:    15,
	}
}

// AddIndicators computes EMA-50, EMA-200, ADX-14 and RSI-14 columns for
// the given candles. The input slice is not mutated.
//
// An error is returned when there are fewer candles than the EMA-200
// warmup requires; classification over such a series would be
// misleading rather than merely imprecise.
func (c *Classifier) AddIndicators(candles []market.Candle) (*Series, error) {
	if len(candles) < emaSlowPeriod {
		return nil, fmt.Errorf("regime: need at least %d candles for EMA-%d, got %d",
			emaSlowPeriod, emaSlowPeriod, len(candles))
	}

	closes := market.Closes(candles)

	ema50, err := indicators.EMA(closes, emaFastPeriod)
	if err != nil {
		return nil, err
	}
	ema200, err := indicators.EMA(closes, emaSlowPeriod)
	if err != nil {
		return nil, err
	}
	adx, err := indicators.ADX(market.Highs(candles), market.Lows(candles), closes, adxPeriod)
	if err != nil {
		return nil, err
	}
	rsi, err := indicators.RSI(closes, rsiPeriod)
	if err != nil {
		return nil, err
	}

	return &Series{
		Candles: candles,
		EMA50:   ema50,
		EMA200:  ema200,
		ADX:     adx,
		RSI:     rsi,
	}, nil
}

// Detect classifies the regime at the latest observation of s.
// It is a pure function of the indicator snapshot: identical inputs
// always yield the identical label.
func (c *Classifier) Detect(s *Series) Regime {
	ema50, ema200, adx, ok := c.latest(s)
	if !ok {
		return Unknown
	}

	if adx < c.WeakADX {
		return Sideways
	}
	if ema50 > ema200 && adx > c.StrongADX {
		return Bullish
	}
	if ema50 < ema200 && adx > c.StrongADX {
		return Bearish
	}
	// Ambiguous zone between weak and strong thresholds, or EMAs tied.
	return Sideways
}

// SuppressEntry reports whether new entries should be blocked at the
// latest observation: a strong bear market (EMA-50 < EMA-200, ADX above
// SuppressADX) that is not extremely oversold (RSI >= RSIFloor).
//
// Missing history never suppresses; the caller's other gates still apply.
func (c *Classifier) SuppressEntry(s *Series) bool {
	ema50, ema200, adx, ok := c.latest(s)
	if !ok {
		return false
	}

	if ema50 >= ema200 {
		return false
	}
	if adx <= c.SuppressADX {
		return false
	}

	if rsi, ok := indicators.Last(s.RSI); ok && rsi < c.RSIFloor {
		// Extreme oversold: allow the dip-buy even in a strong bear.
		return false
	}
	return true
}

// latest returns the newest EMA-50/EMA-200/ADX values, reporting
// ok=false when the series is nil, empty, or still in warmup.
func (c *Classifier) latest(s *Series) (ema50, ema200, adx float64, ok bool) {
	if s == nil || len(s.Candles) == 0 {
		return 0, 0, 0, false
	}
	ema50, ok50 := indicators.Last(s.EMA50)
	ema200, ok200 := indicators.Last(s.EMA200)
	adx, okADX := indicators.Last(s.ADX)
	if !ok50 || !ok200 || !okADX {
		return 0, 0, 0, false
	}
	if math.IsNaN(ema50) || math.IsNaN(ema200) || math.IsNaN(adx) {
		return 0, 0, 0, false
	}
	return ema50, ema200, adx, true
}
