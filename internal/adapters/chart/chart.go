package chart

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"marketpulse/internal/domain/market"
	"marketpulse/pkg/errors"
)

// Chart dimensions in pixels
const (
	Width  = 900
	Height = 450
)

// SMAPeriod is the moving average drawn over the close line
const SMAPeriod = 20

// MinBars is the shortest series worth drawing
const MinBars = 2

// Renderer draws daily close charts as PNG
type Renderer struct{}

// NewRenderer creates a chart renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// PriceChart renders closes for c with a 20-day SMA overlay once enough bars exist.
// The title carries the symbol and the market's currency.
func (r *Renderer) PriceChart(c market.Candles, m market.Market) ([]byte, error) {
	if len(c.Bars) < MinBars {
		return nil, errors.Wrapf(errors.ErrUnavailable, "need at least %d bars for %s, got %d", MinBars, c.Symbol, len(c.Bars))
	}

	xValues := make([]time.Time, len(c.Bars))
	closes := c.Closes()
	for i, b := range c.Bars {
		xValues[i] = b.Time
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"),
				StrokeWidth: 2.5,
			},
			XValues: xValues,
			YValues: closes,
		},
	}

	if len(closes) > SMAPeriod {
		sma := talib.Sma(closes, SMAPeriod)
		// talib leaves the warm-up window at zero
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA %d", SMAPeriod),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("f59e0b"),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues[SMAPeriod-1:],
			YValues: sma[SMAPeriod-1:],
		})
	}

	symbol := m.Info().CurrencySymbol
	lo, hi := bounds(closes)
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s · %d days", c.Symbol, len(c.Bars)),
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%s%.2f", symbol, f)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// bounds pads the close range by 2% so the line never touches the frame
func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.02
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	return lo - pad, hi + pad
}
