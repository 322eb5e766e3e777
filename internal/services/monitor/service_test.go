package monitor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/notification"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/telegram"
)

var now = time.Date(2026, 4, 6, 15, 0, 0, 0, time.UTC)

type fakeUsers struct {
	users   []*user.User
	scanned map[int64]time.Time
}

func (f *fakeUsers) ListWithWatchlist(context.Context) ([]*user.User, error) { return f.users, nil }

func (f *fakeUsers) MarkScanned(_ context.Context, id int64, at time.Time) error {
	if f.scanned == nil {
		f.scanned = map[int64]time.Time{}
	}
	f.scanned[id] = at
	return nil
}

type fakeWatchlists map[int64][]string

func (f fakeWatchlists) Tickers(_ context.Context, id int64) ([]string, error) { return f[id], nil }

type fakeAssembler struct {
	quotes map[string]market.Quote
	news   map[string][]market.NewsItem
	ratio  map[string]float64
}

func (f *fakeAssembler) Assemble(_ context.Context, _ int64, ticker string, _ analysis.Section) (*analysis.CommandContext, error) {
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, errors.NewTickerError(ticker)
	}
	s := analysis.Subject{
		Resolution: market.Resolution{Input: ticker, Symbol: ticker, Market: market.US},
		Info:       market.US.Info(),
		Data: analysis.Data{
			Quote:       q,
			Profile:     market.EmptyProfile(ticker),
			News:        market.News{Symbol: ticker, Items: f.news[ticker]},
			Performance: market.EmptyPerformance(ticker),
		},
	}
	if r, ok := f.ratio[ticker]; ok {
		s.Data.Performance.VolumeRatio = market.Some(r)
		s.Data.Performance.Volume = market.Some(3e6)
	}
	return &analysis.CommandContext{Subjects: []analysis.Subject{s}, Now: now}, nil
}

type memDedup struct {
	mu   sync.Mutex
	sent map[string]*notification.Sent
}

func (m *memDedup) MarkSent(_ context.Context, n *notification.Sent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[string]*notification.Sent{}
	}
	if _, ok := m.sent[n.ContentHash]; ok {
		return false, nil
	}
	m.sent[n.ContentHash] = n
	return true, nil
}

func (m *memDedup) WasSent(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sent[hash]
	return ok, nil
}

func (m *memDedup) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, s := range m.sent {
		if s.SentAt.Before(cutoff) {
			delete(m.sent, h)
			n++
		}
	}
	return n, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []sentMessage
	fail map[int64]bool
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	_, err := f.SendMessageWithOptions(chatID, text, telegram.MessageOptions{})
	return err
}

func (f *fakeSender) SendMessageWithOptions(chatID int64, text string, _ telegram.MessageOptions) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[chatID] {
		return 0, fmt.Errorf("blocked by user")
	}
	f.msgs = append(f.msgs, sentMessage{chatID: chatID, text: text})
	return len(f.msgs), nil
}

func (f *fakeSender) SendPhoto(int64, []byte, string) error { return nil }

func (f *fakeSender) texts(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.msgs {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

type harness struct {
	svc    *Service
	users  *fakeUsers
	asm    *fakeAssembler
	dedup  *memDedup
	sender *fakeSender
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	renderer, err := report.NewRenderer()
	require.NoError(t, err)

	h := &harness{
		users: &fakeUsers{users: []*user.User{
			{TelegramID: 1, IntervalMinutes: 15},
			{TelegramID: 2, IntervalMinutes: 60},
		}},
		asm: &fakeAssembler{
			quotes: map[string]market.Quote{
				"AAPL": {Symbol: "AAPL", Price: market.Some(190), ChangePercent: market.Some(5.2)},
				"MSFT": {Symbol: "MSFT", Price: market.Some(410), ChangePercent: market.Some(0.4)},
			},
			news: map[string][]market.NewsItem{},
		},
		dedup:  &memDedup{},
		sender: &fakeSender{},
	}
	watchlists := fakeWatchlists{1: {"AAPL", "MSFT"}, 2: {"AAPL"}}
	h.svc = NewService(h.users, watchlists, h.asm, renderer, h.dedup, h.sender, nil, cfg, logger.Nop())
	h.svc.now = func() time.Time { return now }
	return h
}

func TestSweepPriceAlertsAreDeduplicated(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 5})

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, 2, res.Tickers)
	assert.Equal(t, 2, res.PriceAlerts, "AAPL moved 5.2% and has two watchers")

	for _, chat := range []int64{1, 2} {
		texts := h.sender.texts(chat)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "🔔 <b>Stock Update: AAPL</b>")
		assert.Contains(t, texts[0], "Change: +5.20%")
		assert.Contains(t, texts[0], "Alert threshold: ±5.00%")
	}
	assert.Equal(t, now, h.users.scanned[1])

	// same price, same day: nothing new even when the users are due again
	h.users.users[0].LastScannedAt = nil
	h.users.users[1].LastScannedAt = nil
	res, err = h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.PriceAlerts)
	assert.Len(t, h.sender.texts(1), 1)
}

func TestSweepThresholdIsInclusiveOnAbsoluteChange(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 5})
	h.asm.quotes["AAPL"] = market.Quote{Price: market.Some(180), ChangePercent: market.Some(-5)}

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PriceAlerts)
	assert.Contains(t, h.sender.texts(2)[0], "📉 Change: -5.00%")
}

func TestSweepSkipsUsersNotDue(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 5})
	recent := now.Add(-10 * time.Minute)
	h.users.users[0].LastScannedAt = &recent // 15 min interval, not due

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)
	assert.Empty(t, h.sender.texts(1))
	assert.Len(t, h.sender.texts(2), 1)
}

func TestSweepNewsWindowFollowsUserInterval(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 50, NewsPerTicker: 2})
	h.asm.news["AAPL"] = []market.NewsItem{
		{Headline: "fresh", Source: "Reuters", Published: now.Add(-10 * time.Minute)},
		{Headline: "an hour old", Source: "CNBC", Published: now.Add(-60 * time.Minute)},
		{Headline: "older", Source: "WSJ", Published: now.Add(-100 * time.Minute)},
		{Headline: "undated"},
	}

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.PriceAlerts)

	// user 1: 15 min interval, 30 min window
	one := h.sender.texts(1)
	require.Len(t, one, 1)
	assert.Contains(t, one[0], "📰 <b>News Alert: AAPL</b>")
	assert.Contains(t, one[0], "<b>fresh</b>")

	// user 2: 60 min interval, 120 min window, capped at two per ticker
	assert.Len(t, h.sender.texts(2), 2)
	assert.Equal(t, 3, res.NewsAlerts)
}

func TestSweepFailedSendIsRetriedNextTime(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 5})
	h.sender.fail = map[int64]bool{2: true}

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.PriceAlerts)
	assert.Equal(t, 1, res.Failed)

	h.sender.fail = nil
	h.users.users[1].LastScannedAt = nil
	res, err = h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.PriceAlerts)
	assert.Len(t, h.sender.texts(2), 1)
}

func TestSweepVolumeAlerts(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 50, VolumeRatio: 3})
	h.asm.ratio = map[string]float64{"MSFT": 3.5, "AAPL": 1.1}

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.VolumeAlerts)
	texts := h.sender.texts(1)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Volume Spike: MSFT")
}

func TestSweepUnknownTickerCountsAsFailure(t *testing.T) {
	h := newHarness(t, Config{PriceThreshold: 5})
	delete(h.asm.quotes, "MSFT")

	res, err := h.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.PriceAlerts)
}

func TestSendBriefing(t *testing.T) {
	h := newHarness(t, Config{})

	n, err := h.svc.SendBriefing(context.Background(), report.Report{Text: "brief"}, 99, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"brief"}, h.sender.texts(99))
	assert.Equal(t, []string{"brief"}, h.sender.texts(1))
}

func TestCleanup(t *testing.T) {
	h := newHarness(t, Config{})
	_, _ = h.dedup.MarkSent(context.Background(), &notification.Sent{ContentHash: "old", SentAt: now.Add(-8 * 24 * time.Hour)})
	_, _ = h.dedup.MarkSent(context.Background(), &notification.Sent{ContentHash: "new", SentAt: now.Add(-time.Hour)})

	n, err := h.svc.Cleanup(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	seen, _ := h.dedup.WasSent(context.Background(), "new")
	assert.True(t, seen)
}
