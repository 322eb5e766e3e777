package marketdata

import (
	"math"

	"github.com/markcheno/go-talib"

	"marketpulse/internal/domain/market"
	"marketpulse/pkg/errors"
)

// Indicator periods
const (
	SMAPeriod = 20
	RSIPeriod = 14
)

// ComputePerformance derives return windows, volume activity and indicators from daily candles.
// The 5-day reference bar is len-6 and the 1-month reference is len-22, clamped to the first bar.
func ComputePerformance(c market.Candles) market.Performance {
	perf := market.EmptyPerformance(c.Symbol)
	perf.SampleCount = len(c.Bars)
	if len(c.Bars) < 2 {
		return perf
	}

	closes := c.Closes()
	n := len(closes)
	latest := closes[n-1]

	perf.LastClose = market.Some(latest)
	perf.Return5D = pctChange(latest, closes[max(0, n-6)])
	perf.Return1M = pctChange(latest, closes[max(0, n-22)])

	current := c.Bars[n-1].Volume
	perf.Volume = market.Some(current)

	window := c.Bars[max(0, n-11) : n-1]
	var sum float64
	for _, b := range window {
		sum += b.Volume
	}
	if len(window) > 0 {
		avg := sum / float64(len(window))
		perf.AvgVolume10D = market.NonZero(avg)
		if avg > 0 {
			perf.VolumeRatio = market.Some(current / avg)
		}
	}

	if n >= SMAPeriod {
		perf.SMA20 = last(talib.Sma(closes, SMAPeriod))
	}
	if n > RSIPeriod {
		perf.RSI14 = last(talib.Rsi(closes, RSIPeriod))
	}
	return perf
}

func pctChange(latest, ref float64) market.Value {
	if ref == 0 {
		return market.Value{}
	}
	return market.Some((latest/ref - 1) * 100)
}

func last(series []float64) market.Value {
	if len(series) == 0 {
		return market.Value{}
	}
	v := series[len(series)-1]
	if v == 0 || math.IsNaN(v) {
		return market.Value{}
	}
	return market.Some(v)
}

// SummarizeOwnership counts buys and sells among insider trades
func SummarizeOwnership(symbol string, txs []market.InsiderTransaction) market.Ownership {
	out := market.EmptyOwnership(symbol)
	if len(txs) == 0 {
		return out
	}

	var net float64
	for _, tx := range txs {
		switch {
		case tx.Change > 0:
			out.Buys++
		case tx.Change < 0:
			out.Sells++
		}
		net += tx.Change
	}
	out.Transactions = txs
	out.NetShares = market.Some(net)
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, errors.ErrNotFound)
}
