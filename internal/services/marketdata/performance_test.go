package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/market"
)

func candlesFrom(symbol string, closes, volumes []float64) market.Candles {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Candle, len(closes))
	for i := range closes {
		bars[i] = market.Candle{Time: start.AddDate(0, 0, i), Close: closes[i], Volume: volumes[i]}
	}
	return market.Candles{Symbol: symbol, Bars: bars}
}

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestComputePerformance_ReturnWindows(t *testing.T) {
	closes := series(30, func(i int) float64 { return float64(100 + i) })
	volumes := series(30, func(i int) float64 { return 1000 })
	volumes[29] = 3000

	perf := ComputePerformance(candlesFrom("AAPL", closes, volumes))

	// latest 129; 5d ref index 24 -> 124; 1m ref index 8 -> 108
	assert.InDelta(t, (129.0/124.0-1)*100, perf.Return5D.V, 1e-9)
	assert.InDelta(t, (129.0/108.0-1)*100, perf.Return1M.V, 1e-9)
	assert.Equal(t, market.Some(3000), perf.Volume)
	assert.InDelta(t, 1000, perf.AvgVolume10D.V, 1e-9)
	assert.InDelta(t, 3.0, perf.VolumeRatio.V, 1e-9)
	assert.Equal(t, 30, perf.SampleCount)

	require.True(t, perf.SMA20.OK)
	assert.InDelta(t, 119.5, perf.SMA20.V, 1e-9)
	require.True(t, perf.RSI14.OK)
	assert.InDelta(t, 100, perf.RSI14.V, 1e-6, "monotonic rise saturates RSI")
}

func TestComputePerformance_ShortSeriesClampsToFirstBar(t *testing.T) {
	perf := ComputePerformance(candlesFrom("X", []float64{50, 55, 60}, []float64{10, 10, 20}))

	assert.InDelta(t, 20.0, perf.Return5D.V, 1e-9)
	assert.InDelta(t, 20.0, perf.Return1M.V, 1e-9)
	assert.InDelta(t, 2.0, perf.VolumeRatio.V, 1e-9)
	assert.False(t, perf.SMA20.OK)
	assert.False(t, perf.RSI14.OK)
}

func TestComputePerformance_TooFewBars(t *testing.T) {
	perf := ComputePerformance(candlesFrom("X", []float64{50}, []float64{10}))
	assert.False(t, perf.Return5D.OK)
	assert.False(t, perf.Volume.OK)
	assert.Equal(t, 1, perf.SampleCount)
}

func TestComputePerformance_ZeroReference(t *testing.T) {
	perf := ComputePerformance(candlesFrom("X", []float64{0, 5}, []float64{0, 10}))
	assert.False(t, perf.Return5D.OK)
	assert.False(t, perf.VolumeRatio.OK)
}

func TestSummarizeOwnership(t *testing.T) {
	o := SummarizeOwnership("AAPL", []market.InsiderTransaction{{Change: 100}, {Change: -300}, {Change: -5}, {Change: 0}})
	assert.Equal(t, 1, o.Buys)
	assert.Equal(t, 2, o.Sells)
	assert.Equal(t, market.Some(-205), o.NetShares)

	empty := SummarizeOwnership("AAPL", nil)
	assert.NotNil(t, empty.Transactions)
	assert.False(t, empty.NetShares.OK)
}
