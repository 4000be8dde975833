package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steadyUptrend(n int) (high, low, close []float64) {
	high = make([]float64, n)
	low = make([]float64, n)
	close = make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		high[i] = base + 1
		low[i] = base
		close[i] = base + 0.75
	}
	return high, low, close
}

func TestADX_Warmup(t *testing.T) {
	t.Parallel()

	high, low, close := steadyUptrend(60)
	out, err := ADX(high, low, close, 14)
	require.NoError(t, err)
	require.Len(t, out, 60)

	// Nothing before index 2*period.
	for i := 0; i < 28; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d should be NaN", i)
	}
	assert.False(t, math.IsNaN(out[28]))
}

func TestADX_StrongTrendReadsHigh(t *testing.T) {
	t.Parallel()

	high, low, close := steadyUptrend(80)
	out, err := ADX(high, low, close, 14)
	require.NoError(t, err)

	// A one-directional march is about as trendy as it gets.
	last := out[len(out)-1]
	assert.Greater(t, last, 25.0)
	assert.LessOrEqual(t, last, 100.0)
}

func TestADX_ShortInput(t *testing.T) {
	t.Parallel()

	high, low, close := steadyUptrend(20)
	out, err := ADX(high, low, close, 14)
	require.NoError(t, err)
	for i, v := range out {
		assert.True(t, math.IsNaN(v), "index %d", i)
	}
}

func TestADX_MisalignedColumns(t *testing.T) {
	t.Parallel()

	_, err := ADX([]float64{1, 2}, []float64{1}, []float64{1, 2}, 14)
	assert.Error(t, err)
}
