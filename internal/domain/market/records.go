package market

import "time"

// Quote is the latest trade snapshot
type Quote struct {
	Symbol        string
	Price         Value
	Change        Value
	ChangePercent Value
	High          Value
	Low           Value
	Open          Value
	PrevClose     Value
	Timestamp     time.Time
}

// Fundamentals holds valuation and quality metrics. MarketCap is in absolute currency units.
type Fundamentals struct {
	Symbol         string
	PE             Value
	PS             Value
	PB             Value
	EPS            Value
	MarketCap      Value
	Beta           Value
	High52W        Value
	Low52W         Value
	DividendYield  Value
	RevenueGrowth  Value // YoY, percent
	ROIC           Value // percent
	ROE            Value // percent
	NetMargin      Value // percent
	DebtToEquity   Value
	AvgVolume10Day Value // shares
}

// Profile describes the listed company
type Profile struct {
	Symbol    string
	Name      string
	Exchange  string
	Industry  string
	Country   string
	Currency  string
	WebURL    string
	IPO       string
	MarketCap Value
}

// Performance holds return windows and volume activity computed from daily candles
type Performance struct {
	Symbol       string
	Return5D     Value
	Return1M     Value
	Volume       Value
	AvgVolume10D Value
	VolumeRatio  Value
	SMA20        Value
	RSI14        Value
	LastClose    Value
	SampleCount  int
}

// NewsItem is one headline
type NewsItem struct {
	Headline  string
	Summary   string
	Source    string
	URL       string
	Category  string
	Published time.Time
}

// News is a bounded list of headlines for a symbol or the whole market
type News struct {
	Symbol string
	Items  []NewsItem
}

// SentimentLabel classifies an aggregate sentiment score
type SentimentLabel string

const (
	Bullish SentimentLabel = "Bullish"
	Bearish SentimentLabel = "Bearish"
	Neutral SentimentLabel = "Neutral"
)

// LabelFor maps a score in [-1, 1] to a label
func LabelFor(score float64) SentimentLabel {
	switch {
	case score > 0.2:
		return Bullish
	case score < -0.2:
		return Bearish
	default:
		return Neutral
	}
}

// SocialPost is one matched post from a social source
type SocialPost struct {
	Title     string
	Subreddit string
	URL       string
	Score     int
	Comments  int
	Created   time.Time
}

// Sentiment is the keyword-heuristic social mood for a symbol
type Sentiment struct {
	Symbol       string
	Score        float64
	Label        SentimentLabel
	Mentions     int
	BullishTotal float64
	BearishTotal float64
	TopPosts     []SocialPost
}

// InsiderTransaction is one reported insider trade
type InsiderTransaction struct {
	Name   string
	Change float64 // signed share delta
	Shares float64 // holding after the trade
	Price  Value
	Code   string
	Date   time.Time
}

// Ownership summarizes recent insider activity
type Ownership struct {
	Symbol       string
	Transactions []InsiderTransaction
	Buys         int
	Sells        int
	NetShares    Value
}

// Candle is one daily bar
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Candles is a chronological series of bars
type Candles struct {
	Symbol string
	Bars   []Candle
}

// Closes returns the closing prices in order
func (c Candles) Closes() []float64 {
	out := make([]float64, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Close
	}
	return out
}

// Mention counts how often a ticker-shaped token appeared in social listings
type Mention struct {
	Ticker string
	Count  int
}

// Trending is the ranked list of mentioned tickers
type Trending struct {
	Sources  []string
	Mentions []Mention
}

// Sentinel-filled constructors. Gateways return these on any upstream failure.

func EmptyQuote(symbol string) Quote { return Quote{Symbol: symbol} }

func EmptyFundamentals(symbol string) Fundamentals { return Fundamentals{Symbol: symbol} }

func EmptyProfile(symbol string) Profile {
	return Profile{
		Symbol:   symbol,
		Name:     NA,
		Exchange: NA,
		Industry: NA,
		Country:  NA,
		Currency: NA,
		WebURL:   NA,
		IPO:      NA,
	}
}

func EmptyPerformance(symbol string) Performance { return Performance{Symbol: symbol} }

func EmptyNews(symbol string) News { return News{Symbol: symbol, Items: []NewsItem{}} }

func EmptySentiment(symbol string) Sentiment {
	return Sentiment{Symbol: symbol, Label: Neutral, TopPosts: []SocialPost{}}
}

func EmptyOwnership(symbol string) Ownership {
	return Ownership{Symbol: symbol, Transactions: []InsiderTransaction{}}
}

func EmptyCandles(symbol string) Candles { return Candles{Symbol: symbol, Bars: []Candle{}} }
