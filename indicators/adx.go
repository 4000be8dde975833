package indicators

import (
	"fmt"
	"math"
)

// ADX calculates Wilder's Average Directional Index (trend strength)
// column for the given period.
//
// Warmup takes 2*period candles: period candles to seed the smoothed
// TR/+DM/-DM averages, then period DX values to seed ADX itself.
// Entries before that are NaN.
func ADX(high, low, close []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("indicators: period must be positive, got %d", period)
	}
	if len(high) != len(low) || len(high) != len(close) {
		return nil, fmt.Errorf("indicators: high/low/close columns must be aligned (%d/%d/%d)",
			len(high), len(low), len(close))
	}

	n := len(close)
	out := nanColumn(n)
	if n < 2*period+1 {
		return out, nil
	}

	p := float64(period)

	var tr14, pdm14, mdm14 float64
	var adx, dxSum float64
	dxCount := 0
	seeded := false

	for i := 1; i < n; i++ {
		// Directional movement from current vs previous highs/lows.
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]

		var pdm, mdm float64
		if upMove > downMove && upMove > 0 {
			pdm = upMove
		}
		if downMove > upMove && downMove > 0 {
			mdm = downMove
		}

		tr := trueRange(high[i], low[i], close[i-1])

		if i <= period {
			// Phase A: accumulate initial averages.
			tr14 += tr
			pdm14 += pdm
			mdm14 += mdm
			if i == period {
				tr14 /= p
				pdm14 /= p
				mdm14 /= p
			}
			continue
		}

		// Wilder smoothing for TR/+DM/-DM.
		tr14 = (tr14*(p-1) + tr) / p
		pdm14 = (pdm14*(p-1) + pdm) / p
		mdm14 = (mdm14*(p-1) + mdm) / p

		if tr14 == 0 {
			continue
		}

		pdi := 100 * pdm14 / tr14
		mdi := 100 * mdm14 / tr14
		den := pdi + mdi
		if den == 0 {
			continue
		}
		dx := 100 * math.Abs(pdi-mdi) / den

		if !seeded {
			// Phase B: seed ADX with the average of the first period DX values.
			dxSum += dx
			dxCount++
			if dxCount == period {
				adx = dxSum / p
				seeded = true
				out[i] = adx
			}
			continue
		}

		adx = (adx*(p-1) + dx) / p
		out[i] = adx
	}

	return out, nil
}

// trueRange is the greatest of high-low, |high-prevClose|, |low-prevClose|.
func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if v := math.Abs(high - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(low - prevClose); v > tr {
		tr = v
	}
	return tr
}
