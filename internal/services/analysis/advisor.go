package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"marketpulse/internal/adapters/ai"
	"marketpulse/internal/domain/market"
	"marketpulse/internal/services/marketdata"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/templates"
)

// AIUnavailable replaces any LLM section that could not be produced
const AIUnavailable = "🤖 AI analysis unavailable."

// Commentary kinds. Each one maps to prompts/<kind> and prompts/<kind>_system.
const (
	KindAnalysis = "analysis"
	KindWhy      = "why"
	KindCompare  = "compare"
	KindAsk      = "ask"
)

type completionParams struct {
	temperature float64
	maxTokens   int
	headlines   int
	perUser     bool
}

var completionSettings = map[string]completionParams{
	KindAnalysis: {temperature: 0.3, maxTokens: 1000, headlines: 10, perUser: true},
	KindWhy:      {temperature: 0.2, maxTokens: 300, headlines: 8},
	KindCompare:  {temperature: 0.2, maxTokens: 800},
	KindAsk:      {temperature: 0.3, maxTokens: 1000, headlines: 10, perUser: true},
}

// Advisor turns an assembled context into LLM commentary.
// It never fails: any error yields AIUnavailable and is logged.
type Advisor struct {
	llm     ai.ChatProvider
	prompts *templates.Registry
	cache   *CommentaryCache
	log     *logger.Logger
}

// NewAdvisor creates an advisor. cache may be nil.
func NewAdvisor(llm ai.ChatProvider, prompts *templates.Registry, cache *CommentaryCache, log *logger.Logger) *Advisor {
	if llm == nil {
		llm = ai.Unavailable{}
	}
	if prompts == nil {
		prompts = templates.Get()
	}
	if log == nil {
		log = logger.Get()
	}
	return &Advisor{llm: llm, prompts: prompts, cache: cache, log: log.With("component", "advisor")}
}

// Enabled reports whether a real backend is configured
func (a *Advisor) Enabled() bool {
	return a.llm.Name() != ai.ProviderNameNone
}

// Analysis writes the deep report commentary for the primary subject
func (a *Advisor) Analysis(ctx context.Context, cc *CommandContext) string {
	return a.complete(ctx, KindAnalysis, cc)
}

// Why explains the recent move of the primary subject
func (a *Advisor) Why(ctx context.Context, cc *CommandContext) string {
	return a.complete(ctx, KindWhy, cc)
}

// Compare contrasts the first two subjects
func (a *Advisor) Compare(ctx context.Context, cc *CommandContext) string {
	if cc == nil || len(cc.Subjects) < 2 {
		return AIUnavailable
	}
	return a.complete(ctx, KindCompare, cc)
}

// Ask answers cc.Question about the primary subject
func (a *Advisor) Ask(ctx context.Context, cc *CommandContext) string {
	if cc == nil || strings.TrimSpace(cc.Question) == "" {
		return AIUnavailable
	}
	return a.complete(ctx, KindAsk, cc)
}

func (a *Advisor) complete(ctx context.Context, kind string, cc *CommandContext) string {
	primary := cc.Primary()
	if primary == nil {
		return AIUnavailable
	}
	params := completionSettings[kind]
	data := buildPromptData(cc, params.headlines)

	symbol := strings.Join(cc.Symbols(), "|")
	variant := strings.ToLower(strings.TrimSpace(cc.Question))
	if params.perUser {
		variant = strconv.FormatInt(cc.User.TelegramID, 10) + ":" + variant
	}
	price := primary.Data.Quote.Price.Or(0)

	if cached, ok := a.cache.Get(ctx, kind, symbol, variant, price); ok {
		return cached.Text
	}

	system, err := a.prompts.Render("prompts/"+kind+"_system", data)
	if err != nil {
		a.log.Errorw("Failed to render system prompt", "kind", kind, "error", err)
		return AIUnavailable
	}
	prompt, err := a.prompts.Render("prompts/"+kind, data)
	if err != nil {
		a.log.Errorw("Failed to render prompt", "kind", kind, "error", err)
		return AIUnavailable
	}

	resp, err := a.llm.Chat(ctx, ai.ChatRequest{
		Messages:    []ai.Message{ai.System(system), ai.User(prompt)},
		Temperature: params.temperature,
		MaxTokens:   params.maxTokens,
	})
	if err != nil {
		a.log.Warnw("LLM completion failed", "kind", kind, "symbol", symbol, "provider", a.llm.Name(), "error", err)
		return AIUnavailable
	}
	text := resp.Text()
	if text == "" {
		a.log.Warnw("LLM returned empty completion", "kind", kind, "symbol", symbol)
		return AIUnavailable
	}

	if err := a.cache.Set(ctx, kind, symbol, variant, text, resp.Model, price); err != nil {
		a.log.Warnw("Failed to cache commentary", "kind", kind, "symbol", symbol, "error", err)
	}
	return text
}

type promptStock struct {
	Symbol    string
	Industry  string
	Price     string
	Change1D  string
	Change5D  string
	Change1M  string
	Volume    string
	AvgVolume string
	RSI       string
	PE        string
	MarketCap string
	Low52     string
	High52    string
	Sentiment string
	Headlines []string
}

type promptData struct {
	promptStock
	Stocks    []promptStock
	Question  string
	Risk      string
	Interests string
	Notes     []string
	Themes    []string
}

func buildPromptData(cc *CommandContext, headlines int) promptData {
	data := promptData{
		Question:  strings.TrimSpace(cc.Question),
		Risk:      string(cc.User.Risk),
		Interests: cc.User.Interests,
	}
	for _, s := range cc.Subjects {
		data.Stocks = append(data.Stocks, stockPrompt(s, headlines))
	}
	data.promptStock = data.Stocks[0]

	for _, n := range cc.User.Notes {
		data.Notes = append(data.Notes, fmt.Sprintf("%s: %s", n.CreatedAt.Format("2006-01-02"), n.Text))
	}
	for _, th := range cc.User.NotesProfile.Themes {
		data.Themes = append(data.Themes, th.Name)
	}
	return data
}

func stockPrompt(s Subject, headlines int) promptStock {
	d := s.Data
	m := s.Market()
	industry := d.Profile.Industry
	if industry == "" || industry == market.NA {
		industry = "Unknown Industry"
	}

	p := promptStock{
		Symbol:    s.Symbol(),
		Industry:  industry,
		Price:     marketdata.FormatPrice(d.Quote.Price, m),
		Change1D:  marketdata.FormatPercent(d.Quote.ChangePercent),
		Change5D:  marketdata.FormatPercent(d.Performance.Return5D),
		Change1M:  marketdata.FormatPercent(d.Performance.Return1M),
		Volume:    marketdata.FormatVolume(d.Performance.Volume),
		AvgVolume: marketdata.FormatVolume(d.Performance.AvgVolume10D),
		RSI:       marketdata.FormatNumber(d.Performance.RSI14),
		PE:        marketdata.FormatNumber(d.Fundamentals.PE),
		MarketCap: marketdata.FormatMoney(d.Fundamentals.MarketCap, m),
		Low52:     marketdata.FormatPrice(d.Fundamentals.Low52W, m),
		High52:    marketdata.FormatPrice(d.Fundamentals.High52W, m),
	}
	if d.Sentiment.Mentions > 0 {
		p.Sentiment = fmt.Sprintf("%s (score %.2f over %d mentions)", d.Sentiment.Label, d.Sentiment.Score, d.Sentiment.Mentions)
	}
	for i, item := range d.News.Items {
		if i >= headlines {
			break
		}
		p.Headlines = append(p.Headlines, item.Headline)
	}
	return p
}
