package resolver

import (
	"context"
	"strings"
	"time"

	"marketpulse/internal/domain/market"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Lookup outcomes reported through the metrics hook
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeNotFound = "not_found"
)

// Validator confirms that a market-qualified symbol exists at the quote provider.
// An error means the provider could not answer; the resolver treats it as unconfirmed.
type Validator interface {
	Validate(ctx context.Context, symbol string) (bool, error)
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(ctx context.Context, symbol string) (bool, error)

// Validate calls f(ctx, symbol)
func (f ValidatorFunc) Validate(ctx context.Context, symbol string) (bool, error) {
	return f(ctx, symbol)
}

// Option configures a Resolver
type Option func(*Resolver)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithTTL overrides the resolution lifetime
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLookupHook is called once per Resolve with the outcome
func WithLookupHook(hook func(outcome string)) Option {
	return func(r *Resolver) { r.onLookup = hook }
}

// Resolver maps bare tickers to market-qualified symbols, trying US first, then NSE, then BSE
type Resolver struct {
	validator Validator
	cache     market.ResolutionCache
	ttl       time.Duration
	now       func() time.Time
	onLookup  func(outcome string)
	log       *logger.Logger
}

// New creates a resolver. cache may be nil, in which case an in-memory cache is used.
func New(validator Validator, cache market.ResolutionCache, log *logger.Logger, opts ...Option) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	r := &Resolver{
		validator: validator,
		cache:     cache,
		ttl:       market.ResolutionTTL,
		now:       time.Now,
		log:       log.With("component", "ticker_resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize upper-cases and trims a raw ticker, dropping a leading $
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimPrefix(s, "$")
}

// Resolve returns the market-qualified symbol for input.
// errors.ErrTickerNotFound is returned when no market confirms it.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (market.Resolution, error) {
	input := Normalize(symbol)
	if input == "" {
		r.record(OutcomeNotFound)
		return market.Resolution{}, errors.Wrap(errors.ErrTickerNotFound, "empty symbol")
	}

	if cached, ok := r.cached(ctx, input); ok {
		r.record(OutcomeHit)
		return cached, nil
	}

	for _, candidate := range candidates(input) {
		if !r.confirm(ctx, candidate.symbol) {
			continue
		}

		res := market.Resolution{
			Input:      input,
			Symbol:     candidate.symbol,
			Market:     candidate.market,
			ResolvedAt: r.now(),
		}
		if err := r.cache.Put(ctx, res); err != nil {
			r.log.Warnw("Failed to cache resolution", "input", input, "error", err)
		}
		r.log.Debugw("Resolved ticker", "input", input, "symbol", res.Symbol, "market", res.Market)
		r.record(OutcomeMiss)
		return res, nil
	}

	r.log.Infow("Ticker not recognized", "input", input)
	r.record(OutcomeNotFound)
	return market.Resolution{}, errors.NewTickerError(input)
}

// MarketInfo returns currency and venue metadata for a market
func MarketInfo(m market.Market) market.Info {
	return m.Info()
}

type candidate struct {
	symbol string
	market market.Market
}

// candidates lists the symbols to try, in priority order
func candidates(input string) []candidate {
	if _, m, ok := market.SplitSuffix(input); ok {
		return []candidate{{symbol: input, market: m}}
	}
	return []candidate{
		{symbol: input, market: market.US},
		{symbol: market.Qualify(input, market.NSE), market: market.NSE},
		{symbol: market.Qualify(input, market.BSE), market: market.BSE},
	}
}

func (r *Resolver) cached(ctx context.Context, input string) (market.Resolution, bool) {
	res, ok, err := r.cache.Get(ctx, input)
	if err != nil {
		r.log.Warnw("Resolution cache read failed", "input", input, "error", err)
		return market.Resolution{}, false
	}
	if !ok || !res.IsFresh(r.now(), r.ttl) {
		return market.Resolution{}, false
	}
	return res, true
}

func (r *Resolver) confirm(ctx context.Context, symbol string) bool {
	ok, err := r.validator.Validate(ctx, symbol)
	if err != nil {
		r.log.Warnw("Symbol validation failed", "symbol", symbol, "error", err)
		return false
	}
	return ok
}

func (r *Resolver) record(outcome string) {
	if r.onLookup != nil {
		r.onLookup(outcome)
	}
}
