package finnhub

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"marketpulse/internal/domain/market"
	"marketpulse/pkg/errors"
)

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Quote returns the latest quote. A zero current price means the symbol is unknown.
func (c *Client) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	var resp quoteResponse
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return market.Quote{}, err
	}
	if resp.Current == 0 {
		return market.Quote{}, errors.Wrapf(errors.ErrNotFound, "no quote for %s", symbol)
	}

	q := market.Quote{
		Symbol:        symbol,
		Price:         market.Some(resp.Current),
		Change:        market.Some(resp.Change),
		ChangePercent: market.Some(resp.ChangePercent),
		High:          market.NonZero(resp.High),
		Low:           market.NonZero(resp.Low),
		Open:          market.NonZero(resp.Open),
		PrevClose:     market.NonZero(resp.PrevClose),
	}
	if resp.Timestamp > 0 {
		q.Timestamp = time.Unix(resp.Timestamp, 0).UTC()
	}
	return q, nil
}

// Fundamentals returns the basic financials (metric=all). Market cap is reported
// by Finnhub in millions and converted to units here.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (market.Fundamentals, error) {
	body, err := c.getRaw(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}})
	if err != nil {
		return market.Fundamentals{}, err
	}

	m := gjson.GetBytes(body, "metric")
	if !m.IsObject() || len(m.Map()) == 0 {
		return market.Fundamentals{}, errors.Wrapf(errors.ErrNotFound, "no metrics for %s", symbol)
	}

	// num returns the first numeric field among keys
	num := func(keys ...string) market.Value {
		for _, key := range keys {
			if v := m.Get(key); v.Type == gjson.Number {
				return market.Some(v.Float())
			}
		}
		return market.Value{}
	}

	return market.Fundamentals{
		Symbol:         symbol,
		PE:             num("peExclExtraTTM", "peTTM"),
		PS:             num("psTTM"),
		PB:             num("pbQuarterly"),
		EPS:            num("epsTTM"),
		MarketCap:      num("marketCapitalization").Scale(1e6),
		Beta:           num("beta"),
		High52W:        num("52WeekHigh"),
		Low52W:         num("52WeekLow"),
		DividendYield:  num("dividendYieldIndicatedAnnual"),
		RevenueGrowth:  num("revenueGrowthTTMYoy", "revenueGrowthYoy"),
		ROIC:           num("roicTTM", "roiTTM"),
		ROE:            num("roeTTM"),
		NetMargin:      num("netProfitMarginTTM"),
		DebtToEquity:   num("totalDebt/totalEquityTTM", "totalDebt/totalEquityQuarterly"),
		AvgVolume10Day: num("10DayAverageTradingVolume").Scale(1e6),
	}, nil
}

type profileResponse struct {
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	Industry  string  `json:"finnhubIndustry"`
	Country   string  `json:"country"`
	Currency  string  `json:"currency"`
	WebURL    string  `json:"weburl"`
	IPO       string  `json:"ipo"`
	MarketCap float64 `json:"marketCapitalization"`
}

// Profile returns the company profile (profile2)
func (c *Client) Profile(ctx context.Context, symbol string) (market.Profile, error) {
	var resp profileResponse
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return market.Profile{}, err
	}
	if resp.Name == "" {
		return market.Profile{}, errors.Wrapf(errors.ErrNotFound, "no profile for %s", symbol)
	}

	return market.Profile{
		Symbol:    symbol,
		Name:      resp.Name,
		Exchange:  market.Str(resp.Exchange),
		Industry:  market.Str(resp.Industry),
		Country:   market.Str(resp.Country),
		Currency:  market.Str(resp.Currency),
		WebURL:    market.Str(resp.WebURL),
		IPO:       market.Str(resp.IPO),
		MarketCap: market.NonZero(resp.MarketCap).Scale(1e6),
	}, nil
}

type candleResponse struct {
	Status string    `json:"s"`
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Time   []int64   `json:"t"`
	Volume []float64 `json:"v"`
}

// Candles returns daily bars covering the last days calendar days, oldest first
func (c *Client) Candles(ctx context.Context, symbol string, days int) (market.Candles, error) {
	to := c.now()
	from := to.AddDate(0, 0, -days)
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
	}

	var resp candleResponse
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return market.Candles{}, err
	}
	if resp.Status != "ok" || len(resp.Close) == 0 {
		return market.Candles{}, errors.Wrapf(errors.ErrNotFound, "no candles for %s (status %q)", symbol, resp.Status)
	}

	n := len(resp.Close)
	for _, l := range []int{len(resp.High), len(resp.Low), len(resp.Open), len(resp.Time), len(resp.Volume)} {
		if l < n {
			n = l
		}
	}

	bars := make([]market.Candle, n)
	for i := 0; i < n; i++ {
		bars[i] = market.Candle{
			Time:   time.Unix(resp.Time[i], 0).UTC(),
			Open:   resp.Open[i],
			High:   resp.High[i],
			Low:    resp.Low[i],
			Close:  resp.Close[i],
			Volume: resp.Volume[i],
		}
	}
	return market.Candles{Symbol: symbol, Bars: bars}, nil
}

type insiderResponse struct {
	Data []struct {
		Name            string   `json:"name"`
		Share           float64  `json:"share"`
		Change          float64  `json:"change"`
		TransactionDate string   `json:"transactionDate"`
		TransactionCode string   `json:"transactionCode"`
		Price           *float64 `json:"transactionPrice"`
	} `json:"data"`
}

// InsiderTransactions returns recent insider trades, as reported (newest first)
func (c *Client) InsiderTransactions(ctx context.Context, symbol string) ([]market.InsiderTransaction, error) {
	var resp insiderResponse
	if err := c.get(ctx, "/stock/insider-transactions", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	out := make([]market.InsiderTransaction, 0, len(resp.Data))
	for _, d := range resp.Data {
		date, _ := time.Parse("2006-01-02", d.TransactionDate)
		out = append(out, market.InsiderTransaction{
			Name:   d.Name,
			Change: d.Change,
			Shares: d.Share,
			Price:  market.FromPtr(d.Price),
			Code:   d.TransactionCode,
			Date:   date,
		})
	}
	return out, nil
}
