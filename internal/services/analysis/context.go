package analysis

import (
	"time"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/usage"
	"marketpulse/internal/domain/user"
)

// Data holds the gateway records for one symbol. Sections that were not
// requested stay sentinel-filled.
type Data struct {
	Quote        market.Quote
	Fundamentals market.Fundamentals
	Profile      market.Profile
	Performance  market.Performance
	News         market.News
	Sentiment    market.Sentiment
	Ownership    market.Ownership
	Candles      market.Candles
}

func emptyData(symbol string) Data {
	return Data{
		Quote:        market.EmptyQuote(symbol),
		Fundamentals: market.EmptyFundamentals(symbol),
		Profile:      market.EmptyProfile(symbol),
		Performance:  market.EmptyPerformance(symbol),
		News:         market.EmptyNews(symbol),
		Sentiment:    market.EmptySentiment(symbol),
		Ownership:    market.EmptyOwnership(symbol),
		Candles:      market.EmptyCandles(symbol),
	}
}

// Subject is one resolved symbol and its data
type Subject struct {
	Resolution market.Resolution
	Info       market.Info
	Sections   Section
	Data       Data
}

// Symbol returns the provider symbol
func (s Subject) Symbol() string {
	return s.Resolution.Symbol
}

// Market returns the resolved market
func (s Subject) Market() market.Market {
	return s.Resolution.Market
}

// UserContext is the caller's persisted state as seen by a report
type UserContext struct {
	TelegramID      int64
	Username        string
	Onboarded       bool
	Risk            user.RiskProfile
	Interests       string
	IntervalMinutes int
	CommandCount    int64
	Watchlist       []string
	OnWatchlist     bool
	Notes           []note.Note
	NotesProfile    note.Profile
	Degraded        bool // user state could not be loaded; defaults were used
}

func defaultUserContext(telegramID int64) UserContext {
	return UserContext{
		TelegramID:      telegramID,
		Risk:            user.RiskModerate,
		IntervalMinutes: user.DefaultIntervalMinutes,
		Watchlist:       []string{},
	}
}

// Status is the runtime view shown by /status
type Status struct {
	Uptime      time.Duration
	PollOffset  int
	Version     string
	TopCommands []usage.CommandCount // bot-wide, last 24h
}

// Sector is one sector ETF quote with its leaders
type Sector struct {
	Def     SectorDef
	Quote   market.Quote
	Leaders []Subject
}

// Alert carries what triggered a monitor notification. The quote and profile
// live in the primary subject.
type Alert struct {
	Threshold market.Value // absolute percent move that fired a price alert
	News      market.NewsItem
}

// CommandContext is everything a report needs. Gateway data lives in
// Subjects; user state lives in User.
type CommandContext struct {
	Subjects   []Subject
	User       UserContext
	MarketNews market.News
	Trending   market.Trending
	Sectors    []Sector
	Screen     ScreenRules
	Status     Status
	Alert      Alert
	Question   string
	AIText     string
	Now        time.Time
}

// Primary returns the first subject or nil
func (c *CommandContext) Primary() *Subject {
	if c == nil || len(c.Subjects) == 0 {
		return nil
	}
	return &c.Subjects[0]
}

// Symbols returns the resolved symbols in order
func (c *CommandContext) Symbols() []string {
	out := make([]string, 0, len(c.Subjects))
	for _, s := range c.Subjects {
		out = append(out, s.Symbol())
	}
	return out
}
