// Package indicators provides technical analysis indicators for trading.
//
// All functions operate on aligned value columns and return a column of
// the same length. Entries before the warmup window are NaN; callers
// should check with math.IsNaN (or use the Ready helper) before acting
// on a value.
package indicators

import (
	"fmt"
	"math"
)

// SMA calculates the Simple Moving Average column for the given period.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("indicators: period must be positive, got %d", period)
	}

	out := nanColumn(len(values))
	if len(values) < period {
		return out, nil
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA calculates the Exponential Moving Average column for the given period.
//
// The first value is seeded with the SMA of the first period entries,
// then the standard multiplier 2/(period+1) is applied.
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("indicators: period must be positive, got %d", period)
	}

	out := nanColumn(len(values))
	if len(values) < period {
		return out, nil
	}

	multiplier := 2.0 / float64(period+1)

	// Start with SMA for first value
	sma := 0.0
	for i := 0; i < period; i++ {
		sma += values[i]
	}
	ema := sma / float64(period)
	out[period-1] = ema

	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}

// RSI calculates Wilder's Relative Strength Index column for the given
// period. Values range 0-100; a flat series with no losses reads 100.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("indicators: period must be positive, got %d", period)
	}

	out := nanColumn(len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	// Seed average gain/loss with simple averages over the first period moves.
	var gain, loss float64
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			gain += diff
		} else {
			loss -= diff
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if diff > 0 {
			g = diff
		} else {
			l = -diff
		}
		avgGain = (avgGain*(p-1) + g) / p
		avgLoss = (avgLoss*(p-1) + l) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Ready reports whether the column value at index i has left the warmup
// window.
func Ready(column []float64, i int) bool {
	return i >= 0 && i < len(column) && !math.IsNaN(column[i])
}

// Last returns the latest column value and whether it is warmed up.
func Last(column []float64) (float64, bool) {
	if len(column) == 0 {
		return 0, false
	}
	v := column[len(column)-1]
	return v, !math.IsNaN(v)
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
