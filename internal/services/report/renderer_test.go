package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/telegram"
)

var now = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func subject(symbol string, m market.Market) analysis.Subject {
	return analysis.Subject{
		Resolution: market.Resolution{Input: symbol, Symbol: symbol, Market: m, ResolvedAt: now},
		Info:       m.Info(),
		Data: analysis.Data{
			Quote:        market.EmptyQuote(symbol),
			Fundamentals: market.EmptyFundamentals(symbol),
			Profile:      market.EmptyProfile(symbol),
			Performance:  market.EmptyPerformance(symbol),
			News:         market.EmptyNews(symbol),
			Sentiment:    market.EmptySentiment(symbol),
			Ownership:    market.EmptyOwnership(symbol),
			Candles:      market.EmptyCandles(symbol),
		},
	}
}

func aapl() analysis.Subject {
	s := subject("AAPL", market.US)
	s.Data.Quote.Price = market.Some(187.4)
	s.Data.Quote.ChangePercent = market.Some(1.254)
	s.Data.Quote.Low = market.Some(185)
	s.Data.Quote.High = market.Some(188.1)
	s.Data.Profile.Name = "Apple Inc"
	s.Data.Profile.Industry = "Technology"
	s.Data.Fundamentals.PE = market.Some(29.871)
	s.Data.Fundamentals.MarketCap = market.Some(2.9e12)
	s.Data.Fundamentals.RevenueGrowth = market.Some(6.1)
	s.Data.Fundamentals.ROIC = market.Some(55)
	s.Data.Performance.Volume = market.Some(51234567)
	s.Data.Performance.VolumeRatio = market.Some(1.2)
	return s
}

func reliance() analysis.Subject {
	s := subject("RELIANCE.NS", market.NSE)
	s.Resolution.Input = "RELIANCE"
	s.Data.Quote.Price = market.Some(2950.5)
	s.Data.Quote.ChangePercent = market.Some(-0.5)
	s.Data.Profile.Name = "Reliance Industries"
	s.Data.Fundamentals.MarketCap = market.Some(1.99e13)
	return s
}

func TestRenderSnapshotUS(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{aapl()}, Now: now}

	rep, err := r.Render(KindSnapshot, cc)
	require.NoError(t, err)

	assert.Equal(t, telegram.ParseModeHTML, rep.ParseMode)
	assert.Contains(t, rep.Text, "<b>Apple Inc (AAPL)</b>")
	assert.Contains(t, rep.Text, "Price: $187.40")
	assert.Contains(t, rep.Text, "📈 Change: +1.25%")
	assert.Contains(t, rep.Text, "P/E: 29.87")
	assert.Contains(t, rep.Text, "Market Cap: $2900.0B")
	assert.Contains(t, rep.Text, "Volume: 51,234,567 (1.20x of 10D avg)")
	assert.Contains(t, rep.Text, "5D: N/A")

	require.NotNil(t, rep.Keyboard)
	var data []string
	for _, row := range rep.Keyboard.InlineKeyboard {
		for _, b := range row {
			data = append(data, b.CallbackData)
		}
	}
	assert.Equal(t, []string{"chart:AAPL", "news:AAPL", "analyse:AAPL", "add:AAPL"}, data)
}

func TestRenderSnapshotWatchedOffersRemove(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{aapl()}, Now: now}
	cc.User.OnWatchlist = true

	rep, err := r.Render(KindSnapshot, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "On your watchlist")
	assert.Equal(t, "remove:AAPL", rep.Keyboard.InlineKeyboard[1][1].CallbackData)
}

func TestRenderSnapshotIndian(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{reliance()}, Now: now}

	rep, err := r.Render(KindSnapshot, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "🇮🇳")
	assert.Contains(t, rep.Text, "(RELIANCE.NS)")
	assert.Contains(t, rep.Text, "Price: ₹2950.50")
	assert.Contains(t, rep.Text, "📉 Change: -0.50%")
	assert.Contains(t, rep.Text, "Market Cap: ₹1990000.00Cr")
	assert.Contains(t, rep.Text, "National Stock Exchange of India · INR")
}

func TestRenderAllSentinelsNeverFails(t *testing.T) {
	r := newRenderer(t)
	empty := subject("ZZZ", market.US)
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{empty, subject("YYY", market.BSE)}, Now: now}

	for _, kind := range []Kind{KindSnapshot, KindAnalysis, KindWhy, KindAsk, KindNews, KindCompare, KindPriceAlert, KindNewsAlert, KindVolumeAlert} {
		rep, err := r.Render(kind, cc)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, rep.Text, kind)
	}

	rep, err := r.Render(KindSnapshot, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "Price: N/A")
	assert.Contains(t, rep.Text, "<b>ZZZ (ZZZ)</b>", "missing company name falls back to the symbol")
}

func TestRenderNeedsSubjects(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render(KindSnapshot, &analysis.CommandContext{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = r.Render(KindCompare, &analysis.CommandContext{Subjects: []analysis.Subject{aapl()}})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = r.Render(Kind("bogus"), &analysis.CommandContext{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestRenderAnalysisEscapesAIText(t *testing.T) {
	r := newRenderer(t)
	s := aapl()
	s.Data.News.Items = []market.NewsItem{
		{Headline: "Apple & partners expand", Source: "Reuters", Published: now.Add(-3 * time.Hour)},
		{Headline: "Second", Source: "CNBC", Published: now.Add(-26 * time.Hour)},
		{Headline: "Third", Source: "WSJ", Published: now.Add(-30 * time.Hour)},
		{Headline: "Fourth is dropped", Source: "FT", Published: now.Add(-40 * time.Hour)},
	}
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{s}, AIText: "Margins <expanding>", Now: now}

	rep, err := r.Render(KindAnalysis, cc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rep.Text, "📊 <b>Fundamental Data: AAPL</b>"))
	assert.Contains(t, rep.Text, "Margins &lt;expanding&gt;")
	assert.Contains(t, rep.Text, "Apple &amp; partners expand <i>(Reuters, 3 hours ago)</i>")
	assert.NotContains(t, rep.Text, "Fourth is dropped")
	assert.Contains(t, rep.Text, "<b>🧠 AI Analysis:</b>")
}

func TestRenderAnalysisUnavailableAI(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{aapl()}, AIText: analysis.AIUnavailable, Now: now}

	rep, err := r.Render(KindAnalysis, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "🤖 AI analysis unavailable.")
	assert.Contains(t, rep.Text, "Price: $187.40")
}

func TestRenderAsk(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Subjects: []analysis.Subject{aapl()}, AIText: "Samsung and Google.", Now: now}

	rep, err := r.Render(KindAsk, cc)
	require.NoError(t, err)
	assert.Equal(t, "🤖 <b>AI Answer for AAPL:</b>\n\nSamsung and Google.", rep.Text)
}

func TestRenderWatchlist(t *testing.T) {
	r := newRenderer(t)

	rep, err := r.Render(KindWatchlist, &analysis.CommandContext{})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "Your watchlist is empty")
	assert.Nil(t, rep.Keyboard)

	cc := &analysis.CommandContext{User: analysis.UserContext{
		Watchlist:       []string{"AAPL", "MSFT", "RELIANCE.NS", "TSLA"},
		IntervalMinutes: 15,
	}}
	rep, err = r.Render(KindWatchlist, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "📊 <b>Monitored Stocks</b>")
	assert.Contains(t, rep.Text, "• RELIANCE.NS\n")
	assert.Contains(t, rep.Text, "Total: 4 · checked every 15 minutes")
	require.Len(t, rep.Keyboard.InlineKeyboard, 2)
	assert.Len(t, rep.Keyboard.InlineKeyboard[0], 3)
	assert.Equal(t, "snapshot:TSLA", rep.Keyboard.InlineKeyboard[1][0].CallbackData)
}

func TestRenderStatus(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{
		User: analysis.UserContext{
			Watchlist:       []string{"AAPL", "TCS.NS"},
			IntervalMinutes: 30,
			Risk:            user.RiskAggressive,
			CommandCount:    1234,
		},
		Status: analysis.Status{Uptime: 90*time.Minute + 1500*time.Millisecond, PollOffset: 884, Version: "1.2.0"},
	}

	rep, err := r.Render(KindStatus, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "📊 <b>Agent Status</b>")
	assert.Contains(t, rep.Text, "🔹 Monitoring: 2 stocks")
	assert.Contains(t, rep.Text, "🔹 Check interval: 30 minutes")
	assert.Contains(t, rep.Text, "🔹 Risk profile: Aggressive")
	assert.Contains(t, rep.Text, "🔹 Commands used: 1,234")
	assert.Contains(t, rep.Text, "🔹 Uptime: 1h30m1s")
	assert.Contains(t, rep.Text, "🔹 Last update id: 884")
	assert.NotContains(t, rep.Text, "could not be loaded")
}

func TestRenderProfile(t *testing.T) {
	r := newRenderer(t)

	rep, err := r.Render(KindProfile, &analysis.CommandContext{User: analysis.UserContext{Risk: user.RiskModerate}})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "Interests: not set")
	assert.Contains(t, rep.Text, "No notes yet")

	notes := []note.Note{
		{Text: "AAPL growth via services revenue", CreatedAt: now.Add(-48 * time.Hour)},
		{Text: "Dividend yield on ITC looks fine", CreatedAt: now},
	}
	cc := &analysis.CommandContext{User: analysis.UserContext{
		Risk:         user.RiskConservative,
		Interests:    "AI & dividends",
		Notes:        notes,
		NotesProfile: note.BuildProfile(notes),
	}}
	rep, err = r.Render(KindProfile, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "Risk: <b>Conservative</b>")
	assert.Contains(t, rep.Text, "Interests: AI &amp; dividends")
	assert.Contains(t, rep.Text, "Notes: 2 (Feb 28, 2026 - Mar 2, 2026)")
	assert.Contains(t, rep.Text, "Growth (1)")
	assert.Contains(t, rep.Text, "AAPL")
}

func TestRenderSectors(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Sectors: []analysis.Sector{
		{Def: analysis.SectorDef{ETF: "XLK", Name: "Technology"}, Quote: market.Quote{ChangePercent: market.Some(1.5)}},
		{Def: analysis.SectorDef{ETF: "XLE", Name: "Energy"}, Quote: market.Quote{ChangePercent: market.Some(-2)}},
	}}

	rep, err := r.Render(KindSectors, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "📈 <b>XLK</b> Technology: +1.50%")
	assert.Contains(t, rep.Text, "📉 <b>XLE</b> Energy: -2.00%")
	assert.Equal(t, "sector:XLE", rep.Keyboard.InlineKeyboard[0][1].CallbackData)
}

func TestRenderSectorDetail(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{Sectors: []analysis.Sector{{
		Def:     analysis.SectorDef{ETF: "XLK", Name: "Technology"},
		Quote:   market.Quote{Price: market.Some(210), ChangePercent: market.Some(0.4)},
		Leaders: []analysis.Subject{aapl()},
	}}}

	rep, err := r.Render(KindSector, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "🏭 <b>Technology (XLK)</b>")
	assert.Contains(t, rep.Text, "$210.00 (+0.40%)")
	assert.Contains(t, rep.Text, "• <b>AAPL</b> $187.40 (+1.25%) · P/E 29.87")
	assert.Equal(t, "snapshot:AAPL", rep.Keyboard.InlineKeyboard[0][0].CallbackData)
}

func TestRenderUndervalued(t *testing.T) {
	r := newRenderer(t)
	rules := analysis.ScreenRules{MaxPE: 20, MinRevenueGrowth: 0, MinROIC: 10, Top: 5}

	rep, err := r.Render(KindUndervalued, &analysis.CommandContext{Screen: rules})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "P/E &lt; 20, revenue growth &gt; 0%, ROIC &gt; 10%")
	assert.Contains(t, rep.Text, "No stocks match the screen right now.")

	rep, err = r.Render(KindUndervalued, &analysis.CommandContext{Screen: rules, Subjects: []analysis.Subject{aapl()}})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "1. <b>AAPL</b> $187.40")
	assert.Contains(t, rep.Text, "Growth +6.10% · ROIC +55.00%")
}

func TestRenderPremarket(t *testing.T) {
	r := newRenderer(t)
	spy := subject("SPY", market.US)
	spy.Data.Quote.Price = market.Some(512.3)
	spy.Data.Quote.ChangePercent = market.Some(0.31)
	cc := &analysis.CommandContext{
		Subjects:   []analysis.Subject{spy},
		MarketNews: market.News{Items: []market.NewsItem{{Headline: "Futures rise", Source: "Bloomberg", Published: now.Add(-time.Hour)}}},
		Now:        now,
	}

	rep, err := r.Render(KindPremarket, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "Pre-Market Briefing</b> · Mar 2, 2026")
	assert.Contains(t, rep.Text, "📈 <b>SPY</b> $512.30 (+0.31%)")
	assert.Contains(t, rep.Text, "• Futures rise <i>(Bloomberg, 1 hour ago)</i>")
}

func TestRenderTrending(t *testing.T) {
	r := newRenderer(t)

	rep, err := r.Render(KindTrending, &analysis.CommandContext{})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "No ticker mentions found right now.")

	cc := &analysis.CommandContext{Trending: market.Trending{
		Sources:  []string{"r/stocks", "r/investing"},
		Mentions: []market.Mention{{Ticker: "NVDA", Count: 12}, {Ticker: "TSLA", Count: 7}},
	}}
	rep, err = r.Render(KindTrending, cc)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "<i>r/stocks, r/investing</i>")
	assert.Contains(t, rep.Text, "1. <b>NVDA</b> · 12 mentions")
	assert.Contains(t, rep.Text, "2. <b>TSLA</b> · 7 mentions")
}

func TestRenderNews(t *testing.T) {
	r := newRenderer(t)
	s := aapl()
	s.Data.News.Items = []market.NewsItem{{
		Headline:  "Apple beats estimates",
		Source:    "Reuters",
		URL:       "https://example.com/a?x=1&y=2",
		Published: now.Add(-2 * time.Hour),
	}}

	rep, err := r.Render(KindNews, &analysis.CommandContext{Subjects: []analysis.Subject{s}, Now: now})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "• <b>Apple beats estimates</b>")
	assert.Contains(t, rep.Text, "<i>Reuters · 2 hours ago</i> · <a href=\"https://example.com/a?x=1&amp;y=2\">Read more</a>")

	rep, err = r.Render(KindNews, &analysis.CommandContext{Subjects: []analysis.Subject{aapl()}, Now: now})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "No recent news found for AAPL.")
}

func TestRenderPriceAlert(t *testing.T) {
	r := newRenderer(t)
	s := aapl()
	s.Data.News.Items = []market.NewsItem{{Headline: "a"}, {Headline: "b"}}

	rep, err := r.Render(KindPriceAlert, &analysis.CommandContext{Subjects: []analysis.Subject{s}})
	require.NoError(t, err)
	assert.Equal(t, "🔔 <b>Stock Update: AAPL</b>\n\n<b>Apple Inc</b>\n💰 Price: $187.40\n📈 Change: +1.25%\n📰 News Items: 2", rep.Text)
	assert.Equal(t, "remove:AAPL", rep.Keyboard.InlineKeyboard[0][2].CallbackData)

	rep, err = r.Render(KindPriceAlert, &analysis.CommandContext{
		Subjects: []analysis.Subject{s},
		Alert:    analysis.Alert{Threshold: market.Some(5)},
	})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "📈 Change: +1.25%\n🎯 Alert threshold: ±5.00%\n📰 News Items: 2")
}

func TestRenderVolumeAlert(t *testing.T) {
	r := newRenderer(t)
	s := aapl()
	s.Data.Performance.VolumeRatio = market.Some(3.456)

	rep, err := r.Render(KindVolumeAlert, &analysis.CommandContext{Subjects: []analysis.Subject{s}})
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "🔊 <b>Volume Spike: AAPL</b>")
	assert.Contains(t, rep.Text, "Volume: 51,234,567 (3.46x of the 10-day average)")
}

func TestRenderNewsAlert(t *testing.T) {
	r := newRenderer(t)
	cc := &analysis.CommandContext{
		Subjects: []analysis.Subject{aapl()},
		Alert: analysis.Alert{News: market.NewsItem{
			Headline: "Apple to buy back $100B",
			Summary:  "Board approves program",
			Source:   "Reuters",
			URL:      "https://example.com/n",
		}},
	}

	rep, err := r.Render(KindNewsAlert, cc)
	require.NoError(t, err)
	assert.Equal(t, "📰 <b>News Alert: AAPL</b>\n\n<b>Apple Inc</b>\n\n<b>Apple to buy back $100B</b>\n\n"+
		"Board approves program\n\n📌 Source: Reuters\n🔗 <a href=\"https://example.com/n\">Read more</a>", rep.Text)
	assert.Equal(t, "https://example.com/n", rep.Keyboard.InlineKeyboard[0][0].URL)
}

func TestRenderHelp(t *testing.T) {
	r := newRenderer(t)
	rep, err := r.Render(KindHelp, nil)
	require.NoError(t, err)
	assert.Contains(t, rep.Text, "/ask TICKER QUESTION")
	assert.Nil(t, rep.Keyboard)
}

func TestClamp(t *testing.T) {
	line := strings.Repeat("x", 99) + "\n"
	long := strings.Repeat(line, 50)

	out := clamp(long)
	assert.LessOrEqual(t, len(out), MaxMessageLength)
	assert.True(t, strings.HasSuffix(out, "x\n…"))
	assert.Equal(t, "short", clamp("short"))
}
