package monitor

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/notification"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/metrics"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/telegram"
)

// Users lists the accounts the monitor sweeps
type Users interface {
	ListWithWatchlist(ctx context.Context) ([]*user.User, error)
	MarkScanned(ctx context.Context, telegramID int64, at time.Time) error
}

// Watchlists lists one user's tickers
type Watchlists interface {
	Tickers(ctx context.Context, userID int64) ([]string, error)
}

// Assembler builds the per-ticker context
type Assembler interface {
	Assemble(ctx context.Context, userID int64, ticker string, sections analysis.Section) (*analysis.CommandContext, error)
}

// Renderer formats alerts
type Renderer interface {
	Render(kind report.Kind, cc *analysis.CommandContext) (report.Report, error)
}

// Publisher streams delivered alerts. May be nil.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// Config tunes alert thresholds
type Config struct {
	PriceThreshold float64 // absolute daily change percent
	VolumeRatio    float64 // 0 disables volume alerts
	NewsPerTicker  int
	Concurrency    int
	AlertTopic     string
}

func (c Config) withDefaults() Config {
	if c.PriceThreshold <= 0 {
		c.PriceThreshold = 5
	}
	if c.NewsPerTicker <= 0 {
		c.NewsPerTicker = 3
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// SweepResult summarizes one pass
type SweepResult struct {
	Users        int
	Tickers      int
	PriceAlerts  int
	NewsAlerts   int
	VolumeAlerts int
	Failed       int
}

// AlertEvent is published for every delivered alert
type AlertEvent struct {
	ChatID int64             `json:"chat_id"`
	Ticker string            `json:"ticker"`
	Kind   notification.Kind `json:"kind"`
	Title  string            `json:"title"`
	SentAt time.Time         `json:"sent_at"`
}

// Service scans watched tickers and notifies watchers of big moves and fresh news.
// Every alert is deduplicated through the sent_notifications hash.
type Service struct {
	users     Users
	watchlist Watchlists
	asm       Assembler
	renderer  Renderer
	dedup     notification.Repository
	sender    telegram.Sender
	publisher Publisher
	cfg       Config
	now       func() time.Time
	log       *logger.Logger
}

// NewService creates a monitor. publisher may be nil.
func NewService(
	users Users,
	watchlist Watchlists,
	asm Assembler,
	renderer Renderer,
	dedup notification.Repository,
	sender telegram.Sender,
	publisher Publisher,
	cfg Config,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Get()
	}
	return &Service{
		users:     users,
		watchlist: watchlist,
		asm:       asm,
		renderer:  renderer,
		dedup:     dedup,
		sender:    sender,
		publisher: publisher,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		log:       log.With("component", "monitor"),
	}
}

// watcher is one recipient of a ticker's alerts
type watcher struct {
	chatID   int64
	lookback time.Duration // news window, twice the user's interval
}

// Sweep checks every ticker watched by a user whose interval has elapsed
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now()
	var res SweepResult

	users, err := s.users.ListWithWatchlist(ctx)
	if err != nil {
		return res, errors.Wrap(err, "list monitored users")
	}

	byTicker := map[string][]watcher{}
	var due []*user.User
	for _, u := range users {
		if !u.DueForScan(now) {
			continue
		}
		tickers, err := s.watchlist.Tickers(ctx, u.TelegramID)
		if err != nil {
			s.log.Warnw("Failed to load watchlist", "telegram_id", u.TelegramID, "error", err)
			continue
		}
		due = append(due, u)
		for _, t := range tickers {
			byTicker[t] = append(byTicker[t], watcher{chatID: u.TelegramID, lookback: 2 * u.Interval()})
		}
	}
	res.Users = len(due)
	res.Tickers = len(byTicker)
	if len(byTicker) == 0 {
		return res, nil
	}

	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, ticker := range tickers {
		g.Go(func() error {
			r := s.checkTicker(gctx, ticker, byTicker[ticker], now)
			mu.Lock()
			res.PriceAlerts += r.PriceAlerts
			res.NewsAlerts += r.NewsAlerts
			res.VolumeAlerts += r.VolumeAlerts
			res.Failed += r.Failed
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, u := range due {
		if err := s.users.MarkScanned(ctx, u.TelegramID, now); err != nil {
			s.log.Warnw("Failed to mark user scanned", "telegram_id", u.TelegramID, "error", err)
		}
	}

	s.log.Infow("Monitor sweep complete",
		"users", res.Users,
		"tickers", res.Tickers,
		"price_alerts", res.PriceAlerts,
		"news_alerts", res.NewsAlerts,
		"volume_alerts", res.VolumeAlerts,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *Service) checkTicker(ctx context.Context, ticker string, watchers []watcher, now time.Time) SweepResult {
	var res SweepResult

	sections := analysis.SectionQuote | analysis.SectionProfile | analysis.SectionNews
	if s.cfg.VolumeRatio > 0 {
		sections |= analysis.SectionPerformance
	}
	cc, err := s.asm.Assemble(ctx, 0, ticker, sections)
	if err != nil {
		s.log.Warnw("Skipping unresolvable watched ticker", "ticker", ticker, "error", err)
		res.Failed++
		return res
	}
	subj := cc.Primary()
	sym := subj.Symbol()
	quote := subj.Data.Quote

	if dp := quote.ChangePercent; dp.OK && math.Abs(dp.V) >= s.cfg.PriceThreshold && quote.Price.OK {
		alert := *cc
		alert.Alert = analysis.Alert{Threshold: market.Some(s.cfg.PriceThreshold)}
		for _, w := range watchers {
			hash := notification.PriceHash(w.chatID, sym, quote.Price.V, now)
			sent, err := s.deliver(ctx, w.chatID, report.KindPriceAlert, &alert, &notification.Sent{
				ContentHash: hash,
				Ticker:      sym,
				Kind:        notification.KindPrice,
				Title:       notification.Title(sym + " price move"),
				SentAt:      now,
			})
			res.add(sent, err, notification.KindPrice)
		}
	}

	if ratio := subj.Data.Performance.VolumeRatio; s.cfg.VolumeRatio > 0 && ratio.OK && ratio.V >= s.cfg.VolumeRatio {
		for _, w := range watchers {
			sent, err := s.deliver(ctx, w.chatID, report.KindVolumeAlert, cc, &notification.Sent{
				ContentHash: notification.VolumeHash(w.chatID, sym, now),
				Ticker:      sym,
				Kind:        notification.KindVolume,
				Title:       notification.Title(sym + " volume spike"),
				SentAt:      now,
			})
			res.add(sent, err, notification.KindVolume)
		}
	}

	for _, w := range watchers {
		delivered := 0
		for _, item := range subj.Data.News.Items {
			if delivered >= s.cfg.NewsPerTicker {
				break
			}
			if item.Published.IsZero() || now.Sub(item.Published) > w.lookback {
				continue
			}
			alert := *cc
			alert.Alert = analysis.Alert{News: item}
			sent, err := s.deliver(ctx, w.chatID, report.KindNewsAlert, &alert, &notification.Sent{
				ContentHash: notification.NewsHash(w.chatID, sym, item.Headline, item.Published),
				Ticker:      sym,
				Kind:        notification.KindNews,
				Title:       notification.Title(item.Headline),
				SentAt:      now,
			})
			res.add(sent, err, notification.KindNews)
			if sent {
				delivered++
			}
		}
	}
	return res
}

// deliver sends one alert unless its hash was already recorded.
// The hash is stored only after a successful send.
func (s *Service) deliver(ctx context.Context, chatID int64, kind report.Kind, cc *analysis.CommandContext, rec *notification.Sent) (bool, error) {
	seen, err := s.dedup.WasSent(ctx, rec.ContentHash)
	if err != nil {
		return false, errors.Wrap(err, "check dedup")
	}
	if seen {
		return false, nil
	}

	rep, err := s.renderer.Render(kind, cc)
	if err != nil {
		return false, errors.Wrapf(err, "render %s", kind)
	}
	if _, err := s.sender.SendMessageWithOptions(chatID, rep.Text, rep.Options()); err != nil {
		return false, errors.Wrapf(err, "send %s to %d", kind, chatID)
	}

	if _, err := s.dedup.MarkSent(ctx, rec); err != nil {
		s.log.Warnw("Alert sent but dedup record failed", "hash", rec.ContentHash, "error", err)
	}
	metrics.RecordAlert(string(rec.Kind))

	if s.publisher != nil && s.cfg.AlertTopic != "" {
		ev := AlertEvent{ChatID: chatID, Ticker: rec.Ticker, Kind: rec.Kind, Title: rec.Title, SentAt: rec.SentAt}
		if err := s.publisher.Publish(ctx, s.cfg.AlertTopic, rec.Ticker, ev); err != nil {
			s.log.Warnw("Failed to publish alert event", "ticker", rec.Ticker, "error", err)
		}
	}
	return true, nil
}

func (r *SweepResult) add(sent bool, err error, kind notification.Kind) {
	if err != nil {
		r.Failed++
		return
	}
	if !sent {
		return
	}
	switch kind {
	case notification.KindPrice:
		r.PriceAlerts++
	case notification.KindNews:
		r.NewsAlerts++
	case notification.KindVolume:
		r.VolumeAlerts++
	}
}

// SendBriefing delivers a rendered report to every monitored user plus extra chats
func (s *Service) SendBriefing(ctx context.Context, rep report.Report, extra ...int64) (int, error) {
	users, err := s.users.ListWithWatchlist(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list briefing recipients")
	}

	seen := map[int64]bool{}
	var chats []int64
	for _, id := range extra {
		if id != 0 && !seen[id] {
			seen[id] = true
			chats = append(chats, id)
		}
	}
	for _, u := range users {
		if !seen[u.TelegramID] {
			seen[u.TelegramID] = true
			chats = append(chats, u.TelegramID)
		}
	}

	sent := 0
	for _, chatID := range chats {
		if _, err := s.sender.SendMessageWithOptions(chatID, rep.Text, rep.Options()); err != nil {
			s.log.Warnw("Failed to send briefing", "chat_id", chatID, "error", err)
			continue
		}
		sent++
		metrics.RecordAlert("briefing")
	}
	return sent, nil
}

// Cleanup drops dedup records older than maxAge
func (s *Service) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.dedup.DeleteOlderThan(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, errors.Wrap(err, "delete old notifications")
	}
	return n, nil
}
