package marketdata

import (
	"context"
	"strings"
	"time"

	"marketpulse/internal/adapters/reddit"
	"marketpulse/internal/domain/market"
	"marketpulse/internal/services/resolver"
	"marketpulse/pkg/logger"
)

// Provider labels used in logs and metrics
const (
	ProviderFinnhub = "finnhub"
	ProviderReddit  = "reddit"
)

// PerformanceWindowDays is the calendar span fetched for return windows
const PerformanceWindowDays = 40

// StockProvider is the quote/fundamentals/news upstream
type StockProvider interface {
	Quote(ctx context.Context, symbol string) (market.Quote, error)
	Fundamentals(ctx context.Context, symbol string) (market.Fundamentals, error)
	Profile(ctx context.Context, symbol string) (market.Profile, error)
	Candles(ctx context.Context, symbol string, days int) (market.Candles, error)
	CompanyNews(ctx context.Context, symbol string, lookback time.Duration) ([]market.NewsItem, error)
	MarketNews(ctx context.Context, category string, limit int) ([]market.NewsItem, error)
	InsiderTransactions(ctx context.Context, symbol string) ([]market.InsiderTransaction, error)
}

// SocialProvider is the social listing upstream
type SocialProvider interface {
	Search(ctx context.Context, subreddit, query, timeFilter string, limit int) ([]reddit.Post, error)
	Hot(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
}

// CallRecorder observes every upstream call
type CallRecorder func(provider, operation string, latency time.Duration, err error)

// Config tunes the gateway
type Config struct {
	// CallTimeout bounds each upstream call
	CallTimeout time.Duration
	// Subreddits searched for sentiment and trending
	Subreddits []string
	// SentimentPostLimit is spread across the subreddits
	SentimentPostLimit int
}

// Gateway is the facade over market data providers.
// Every method returns a record; failures yield the sentinel-filled record and are logged.
type Gateway struct {
	stock  StockProvider
	social SocialProvider
	cfg    Config
	record CallRecorder
	log    *logger.Logger
}

// NewGateway creates a gateway. social may be nil, in which case sentiment is always neutral.
func NewGateway(stock StockProvider, social SocialProvider, cfg Config, record CallRecorder, log *logger.Logger) *Gateway {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if len(cfg.Subreddits) == 0 {
		cfg.Subreddits = []string{"wallstreetbets", "stocks", "investing"}
	}
	if cfg.SentimentPostLimit <= 0 {
		cfg.SentimentPostLimit = 100
	}
	if record == nil {
		record = func(string, string, time.Duration, error) {}
	}
	return &Gateway{
		stock:  stock,
		social: social,
		cfg:    cfg,
		record: record,
		log:    log.With("component", "market_gateway"),
	}
}

// call runs fn under the per-call timeout, records it, and reports success
func call[T any](ctx context.Context, g *Gateway, provider, operation, symbol string, fn func(context.Context) (T, error)) (T, bool) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	out, err := fn(callCtx)
	g.record(provider, operation, time.Since(start), err)

	if err != nil {
		g.log.Warnw("Provider call failed",
			"provider", provider,
			"operation", operation,
			"symbol", symbol,
			"error", err,
		)
		var zero T
		return zero, false
	}
	return out, true
}

// Quote returns the latest quote
func (g *Gateway) Quote(ctx context.Context, symbol string) market.Quote {
	q, ok := call(ctx, g, ProviderFinnhub, "quote", symbol, func(ctx context.Context) (market.Quote, error) {
		return g.stock.Quote(ctx, symbol)
	})
	if !ok {
		return market.EmptyQuote(symbol)
	}
	return q
}

// Fundamentals returns valuation metrics
func (g *Gateway) Fundamentals(ctx context.Context, symbol string) market.Fundamentals {
	f, ok := call(ctx, g, ProviderFinnhub, "fundamentals", symbol, func(ctx context.Context) (market.Fundamentals, error) {
		return g.stock.Fundamentals(ctx, symbol)
	})
	if !ok {
		return market.EmptyFundamentals(symbol)
	}
	return f
}

// Profile returns the company profile
func (g *Gateway) Profile(ctx context.Context, symbol string) market.Profile {
	p, ok := call(ctx, g, ProviderFinnhub, "profile", symbol, func(ctx context.Context) (market.Profile, error) {
		return g.stock.Profile(ctx, symbol)
	})
	if !ok {
		return market.EmptyProfile(symbol)
	}
	return p
}

// Candles returns daily bars for the last days calendar days
func (g *Gateway) Candles(ctx context.Context, symbol string, days int) market.Candles {
	c, ok := call(ctx, g, ProviderFinnhub, "candles", symbol, func(ctx context.Context) (market.Candles, error) {
		return g.stock.Candles(ctx, symbol, days)
	})
	if !ok {
		return market.EmptyCandles(symbol)
	}
	return c
}

// Performance returns return windows and volume activity
func (g *Gateway) Performance(ctx context.Context, symbol string) market.Performance {
	return ComputePerformance(g.Candles(ctx, symbol, PerformanceWindowDays))
}

// News returns company headlines within lookback, newest first
func (g *Gateway) News(ctx context.Context, symbol string, lookback time.Duration) market.News {
	items, ok := call(ctx, g, ProviderFinnhub, "company_news", symbol, func(ctx context.Context) ([]market.NewsItem, error) {
		return g.stock.CompanyNews(ctx, symbol, lookback)
	})
	if !ok || items == nil {
		return market.EmptyNews(symbol)
	}
	return market.News{Symbol: symbol, Items: items}
}

// MarketNews returns general headlines
func (g *Gateway) MarketNews(ctx context.Context, category string, limit int) market.News {
	items, ok := call(ctx, g, ProviderFinnhub, "market_news", category, func(ctx context.Context) ([]market.NewsItem, error) {
		return g.stock.MarketNews(ctx, category, limit)
	})
	if !ok || items == nil {
		return market.EmptyNews("")
	}
	return market.News{Items: items}
}

// Ownership summarizes insider transactions
func (g *Gateway) Ownership(ctx context.Context, symbol string) market.Ownership {
	txs, ok := call(ctx, g, ProviderFinnhub, "insider_transactions", symbol, func(ctx context.Context) ([]market.InsiderTransaction, error) {
		return g.stock.InsiderTransactions(ctx, symbol)
	})
	if !ok {
		return market.EmptyOwnership(symbol)
	}
	return SummarizeOwnership(symbol, txs)
}

// Sentiment scores recent social posts mentioning the symbol. Subreddits that fail are skipped.
func (g *Gateway) Sentiment(ctx context.Context, symbol string) market.Sentiment {
	if g.social == nil {
		return market.EmptySentiment(symbol)
	}

	query, _, _ := market.SplitSuffix(strings.ToUpper(symbol))
	perSub := g.cfg.SentimentPostLimit / len(g.cfg.Subreddits)
	if perSub < 1 {
		perSub = 1
	}

	var posts []reddit.Post
	for _, sub := range g.cfg.Subreddits {
		found, ok := call(ctx, g, ProviderReddit, "search", symbol, func(ctx context.Context) ([]reddit.Post, error) {
			return g.social.Search(ctx, sub, query, "day", perSub)
		})
		if ok {
			posts = append(posts, found...)
		}
	}
	return ScoreSentiment(symbol, posts)
}

// Trending ranks ticker-shaped tokens in the hot listings of the configured subreddits
func (g *Gateway) Trending(ctx context.Context, limit int) market.Trending {
	out := market.Trending{Sources: []string{}, Mentions: []market.Mention{}}
	if g.social == nil {
		return out
	}

	var posts []reddit.Post
	for _, sub := range g.cfg.Subreddits {
		found, ok := call(ctx, g, ProviderReddit, "hot", sub, func(ctx context.Context) ([]reddit.Post, error) {
			return g.social.Hot(ctx, sub, 50)
		})
		if ok {
			posts = append(posts, found...)
			out.Sources = append(out.Sources, sub)
		}
	}
	out.Mentions = RankMentions(posts, limit)
	return out
}

var _ resolver.Validator = (*Gateway)(nil)

// Validate confirms a symbol has a live quote. It is the resolver's validator.
func (g *Gateway) Validate(ctx context.Context, symbol string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	q, err := g.stock.Quote(callCtx, symbol)
	g.record(ProviderFinnhub, "validate", time.Since(start), err)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return q.Price.OK, nil
}
