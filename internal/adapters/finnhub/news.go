package finnhub

import (
	"context"
	"net/url"
	"sort"
	"time"

	"marketpulse/internal/domain/market"
)

type newsResponse struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

func (n newsResponse) item() market.NewsItem {
	return market.NewsItem{
		Headline:  n.Headline,
		Summary:   n.Summary,
		Source:    n.Source,
		URL:       n.URL,
		Category:  n.Category,
		Published: time.Unix(n.Datetime, 0).UTC(),
	}
}

// CompanyNews returns headlines published within lookback, newest first
func (c *Client) CompanyNews(ctx context.Context, symbol string, lookback time.Duration) ([]market.NewsItem, error) {
	to := c.now().UTC()
	from := to.Add(-lookback)
	params := url.Values{
		"symbol": {symbol},
		"from":   {from.Format("2006-01-02")},
		"to":     {to.Format("2006-01-02")},
	}

	var resp []newsResponse
	if err := c.get(ctx, "/company-news", params, &resp); err != nil {
		return nil, err
	}

	items := make([]market.NewsItem, 0, len(resp))
	for _, n := range resp {
		if n.Headline == "" {
			continue
		}
		item := n.item()
		if item.Published.Before(from) {
			continue
		}
		items = append(items, item)
	}
	sortNewest(items)
	return items, nil
}

// MarketNews returns general market headlines for a category (general, forex, crypto, merger)
func (c *Client) MarketNews(ctx context.Context, category string, limit int) ([]market.NewsItem, error) {
	if category == "" {
		category = "general"
	}

	var resp []newsResponse
	if err := c.get(ctx, "/news", url.Values{"category": {category}}, &resp); err != nil {
		return nil, err
	}

	items := make([]market.NewsItem, 0, len(resp))
	for _, n := range resp {
		if n.Headline != "" {
			items = append(items, n.item())
		}
	}
	sortNewest(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func sortNewest(items []market.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
}
