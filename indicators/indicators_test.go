package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	t.Parallel()

	out, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestSMA_BadPeriod(t *testing.T) {
	t.Parallel()

	_, err := SMA([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestSMA_ShortInput(t *testing.T) {
	t.Parallel()

	out, err := SMA([]float64{1, 2}, 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMA(t *testing.T) {
	t.Parallel()

	out, err := EMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)

	// Seeded with SMA(1,2,3)=2, multiplier 0.5.
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestEMA_TracksTrend(t *testing.T) {
	t.Parallel()

	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	fast, err := EMA(values, 10)
	require.NoError(t, err)
	slow, err := EMA(values, 50)
	require.NoError(t, err)

	// In a steady uptrend the faster EMA sits above the slower one.
	assert.Greater(t, fast[99], slow[99])
}

func TestRSI_AllGains(t *testing.T) {
	t.Parallel()

	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i + 1)
	}
	out, err := RSI(values, 14)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(out[13]))
	assert.InDelta(t, 100.0, out[14], 1e-12)
	assert.InDelta(t, 100.0, out[29], 1e-12)
}

func TestRSI_Range(t *testing.T) {
	t.Parallel()

	values := make([]float64, 60)
	for i := range values {
		// Choppy series with both gains and losses.
		values[i] = 100 + float64(i%7) - float64(i%3)*2
	}
	out, err := RSI(values, 14)
	require.NoError(t, err)

	for i := 14; i < len(out); i++ {
		assert.False(t, math.IsNaN(out[i]), "index %d still NaN", i)
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestReadyAndLast(t *testing.T) {
	t.Parallel()

	col := []float64{math.NaN(), math.NaN(), 3.5}

	assert.False(t, Ready(col, 0))
	assert.False(t, Ready(col, -1))
	assert.False(t, Ready(col, 3))
	assert.True(t, Ready(col, 2))

	v, ok := Last(col)
	assert.True(t, ok)
	assert.InDelta(t, 3.5, v, 1e-12)

	_, ok = Last([]float64{math.NaN()})
	assert.False(t, ok)

	_, ok = Last(nil)
	assert.False(t, ok)
}
