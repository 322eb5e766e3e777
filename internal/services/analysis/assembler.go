package analysis

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/user"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Resolver maps raw user input to a market-qualified symbol
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (market.Resolution, error)
}

// DataSource is the market data gateway. Its methods never fail; absent
// data comes back sentinel-filled.
type DataSource interface {
	Quote(ctx context.Context, symbol string) market.Quote
	Fundamentals(ctx context.Context, symbol string) market.Fundamentals
	Profile(ctx context.Context, symbol string) market.Profile
	Performance(ctx context.Context, symbol string) market.Performance
	Candles(ctx context.Context, symbol string, days int) market.Candles
	News(ctx context.Context, symbol string, lookback time.Duration) market.News
	MarketNews(ctx context.Context, category string, limit int) market.News
	Sentiment(ctx context.Context, symbol string) market.Sentiment
	Ownership(ctx context.Context, symbol string) market.Ownership
	Trending(ctx context.Context, limit int) market.Trending
}

// UserStore loads persisted user state
type UserStore interface {
	Get(ctx context.Context, telegramID int64) (*user.User, error)
}

// WatchlistStore lists a user's tickers
type WatchlistStore interface {
	Tickers(ctx context.Context, userID int64) ([]string, error)
}

// NoteStore reads investment notes
type NoteStore interface {
	Recent(ctx context.Context, userID int64, limit int) ([]note.Note, error)
	Profile(ctx context.Context, userID int64) (note.Profile, error)
}

// AssemblerConfig tunes what the assembler fetches
type AssemblerConfig struct {
	NewsLookback time.Duration
	CandleDays   int
	NoteLimit    int
	Concurrency  int
}

func (c AssemblerConfig) withDefaults() AssemblerConfig {
	if c.NewsLookback <= 0 {
		c.NewsLookback = 72 * time.Hour
	}
	if c.CandleDays <= 0 {
		c.CandleDays = 90
	}
	if c.NoteLimit <= 0 {
		c.NoteLimit = 5
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// Assembler merges resolver output, gateway records and user state into a CommandContext
type Assembler struct {
	resolver  Resolver
	data      DataSource
	users     UserStore
	watchlist WatchlistStore
	notes     NoteStore
	cfg       AssemblerConfig
	now       func() time.Time
	log       *logger.Logger
}

// NewAssembler creates an assembler. notes may be nil.
func NewAssembler(
	resolver Resolver,
	data DataSource,
	users UserStore,
	watchlist WatchlistStore,
	notes NoteStore,
	cfg AssemblerConfig,
	log *logger.Logger,
) *Assembler {
	if log == nil {
		log = logger.Get()
	}
	return &Assembler{
		resolver:  resolver,
		data:      data,
		users:     users,
		watchlist: watchlist,
		notes:     notes,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		log:       log.With("component", "assembler"),
	}
}

// Assemble builds the context for a single-ticker command
func (a *Assembler) Assemble(ctx context.Context, userID int64, ticker string, sections Section) (*CommandContext, error) {
	res, err := a.resolver.Resolve(ctx, ticker)
	if err != nil {
		return nil, errors.Wrap(err, "assemble")
	}

	cc := a.newContext()
	subject := newSubject(res, sections)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.fetch(gctx, &subject)
		return nil
	})
	g.Go(func() error {
		cc.User = a.loadUser(gctx, userID, sections)
		return nil
	})
	_ = g.Wait()

	cc.User.OnWatchlist = contains(cc.User.Watchlist, res.Symbol) || contains(cc.User.Watchlist, res.Input)
	cc.Subjects = []Subject{subject}
	return cc, nil
}

// AssemblePair builds the context for /compare. Both tickers must resolve.
func (a *Assembler) AssemblePair(ctx context.Context, userID int64, first, second string, sections Section) (*CommandContext, error) {
	var resolved [2]market.Resolution
	for i, t := range []string{first, second} {
		res, err := a.resolver.Resolve(ctx, t)
		if err != nil {
			return nil, errors.Wrap(err, "assemble pair")
		}
		resolved[i] = res
	}

	cc := a.newContext()
	subjects := []Subject{newSubject(resolved[0], sections), newSubject(resolved[1], sections)}

	g, gctx := errgroup.WithContext(ctx)
	for i := range subjects {
		s := &subjects[i]
		g.Go(func() error {
			a.fetch(gctx, s)
			return nil
		})
	}
	g.Go(func() error {
		cc.User = a.loadUser(gctx, userID, sections)
		return nil
	})
	_ = g.Wait()

	cc.Subjects = subjects
	return cc, nil
}

// AssembleSymbols builds a context over many symbols for the market scans.
// Symbols that do not resolve are skipped; order is preserved.
func (a *Assembler) AssembleSymbols(ctx context.Context, userID int64, symbols []string, sections Section) (*CommandContext, error) {
	subjects := make([]*Subject, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			res, err := a.resolver.Resolve(gctx, sym)
			if err != nil {
				a.log.Debugw("Skipping unresolved symbol", "symbol", sym, "error", err)
				return nil
			}
			s := newSubject(res, sections)
			a.fetch(gctx, &s)
			subjects[i] = &s
			return nil
		})
	}
	_ = g.Wait()

	cc := a.newContext()
	cc.User = a.loadUser(ctx, userID, sections)
	for _, s := range subjects {
		if s != nil {
			cc.Subjects = append(cc.Subjects, *s)
		}
	}
	if len(cc.Subjects) == 0 && len(symbols) > 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no symbol in the scan could be resolved")
	}
	return cc, nil
}

// ForUser builds a context that carries only user state, for commands
// without a ticker (/list, /status, /profile, /trending).
func (a *Assembler) ForUser(ctx context.Context, userID int64, sections Section) *CommandContext {
	cc := a.newContext()
	cc.User = a.loadUser(ctx, userID, sections)
	return cc
}

// MarketNews fetches general market headlines
func (a *Assembler) MarketNews(ctx context.Context, limit int) market.News {
	return a.data.MarketNews(ctx, "general", limit)
}

// Trending ranks tickers mentioned across the configured social sources
func (a *Assembler) Trending(ctx context.Context, limit int) market.Trending {
	return a.data.Trending(ctx, limit)
}

func (a *Assembler) newContext() *CommandContext {
	return &CommandContext{Now: a.now()}
}

func newSubject(res market.Resolution, sections Section) Subject {
	return Subject{
		Resolution: res,
		Info:       res.Market.Info(),
		Sections:   sections.Gateway(),
		Data:       emptyData(res.Symbol),
	}
}

// fetch fills the requested sections of s concurrently
func (a *Assembler) fetch(ctx context.Context, s *Subject) {
	sym := s.Symbol()
	d := &s.Data

	var g errgroup.Group
	if s.Sections.Has(SectionQuote) {
		g.Go(func() error { d.Quote = a.data.Quote(ctx, sym); return nil })
	}
	if s.Sections.Has(SectionFundamentals) {
		g.Go(func() error { d.Fundamentals = a.data.Fundamentals(ctx, sym); return nil })
	}
	if s.Sections.Has(SectionProfile) {
		g.Go(func() error { d.Profile = a.data.Profile(ctx, sym); return nil })
	}
	if s.Sections.Has(SectionPerformance) {
		g.Go(func() error { d.Performance = a.data.Performance(ctx, sym); return nil })
	}
	if s.Sections.Has(SectionNews) {
		g.Go(func() error { d.News = a.data.News(ctx, sym, a.cfg.NewsLookback); return nil })
	}
	if s.Sections.Has(SectionSentiment) {
		g.Go(func() error { d.Sentiment = a.data.Sentiment(ctx, sym); return nil })
	}
	if s.Sections.Has(SectionOwnership) {
		g.Go(func() error { d.Ownership = a.data.Ownership(ctx, sym); return nil })
	}
	if s.Sections.Has(SectionCandles) {
		g.Go(func() error { d.Candles = a.data.Candles(ctx, sym, a.cfg.CandleDays); return nil })
	}
	_ = g.Wait()
}

// loadUser never fails. Persistence errors degrade to defaults and are logged.
func (a *Assembler) loadUser(ctx context.Context, userID int64, sections Section) UserContext {
	uc := defaultUserContext(userID)

	u, err := a.users.Get(ctx, userID)
	switch {
	case err == nil && u != nil:
		uc.Username = u.Username
		uc.Onboarded = u.Step == user.StepComplete
		uc.Risk = u.RiskOrDefault()
		uc.Interests = u.Interests
		uc.IntervalMinutes = int(u.Interval().Minutes())
		uc.CommandCount = u.CommandCount
	case err == nil, errors.Is(err, errors.ErrNotFound):
	default:
		a.log.Warnw("Failed to load user state, using defaults", "telegram_id", userID, "error", err)
		uc.Degraded = true
	}

	tickers, err := a.watchlist.Tickers(ctx, userID)
	if err != nil {
		a.log.Warnw("Failed to load watchlist, using empty list", "telegram_id", userID, "error", err)
		uc.Degraded = true
	} else if tickers != nil {
		sort.Strings(tickers)
		uc.Watchlist = tickers
	}

	if sections.Has(SectionNotes) && a.notes != nil {
		if notes, err := a.notes.Recent(ctx, userID, a.cfg.NoteLimit); err != nil {
			a.log.Warnw("Failed to load notes", "telegram_id", userID, "error", err)
			uc.Degraded = true
		} else {
			uc.Notes = notes
		}
		if p, err := a.notes.Profile(ctx, userID); err != nil {
			a.log.Warnw("Failed to build notes profile", "telegram_id", userID, "error", err)
			uc.Degraded = true
		} else {
			uc.NotesProfile = p
		}
	}
	return uc
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
