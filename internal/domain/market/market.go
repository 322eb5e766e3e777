package market

import (
	"context"
	"strings"
	"time"
)

// Market identifies the exchange a symbol trades on
type Market string

const (
	US      Market = "US"
	NSE     Market = "NSE"
	BSE     Market = "BSE"
	Unknown Market = "UNKNOWN"
)

// Exchange suffixes used by the quote provider
const (
	SuffixNSE = ".NS"
	SuffixBSE = ".BO"
)

// ResolutionTTL bounds how long a resolved symbol may be reused
const ResolutionTTL = 24 * time.Hour

// Resolution maps a raw user input to a market-qualified symbol
type Resolution struct {
	Input      string    `json:"input"`
	Symbol     string    `json:"symbol"`
	Market     Market    `json:"market"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// IsFresh reports whether the resolution may still be served at now
func (r Resolution) IsFresh(now time.Time, ttl time.Duration) bool {
	if r.ResolvedAt.IsZero() {
		return false
	}
	return now.Sub(r.ResolvedAt) < ttl
}

// SplitSuffix separates a known exchange suffix from a symbol.
// ok is false when the symbol carries no recognized suffix.
func SplitSuffix(symbol string) (base string, m Market, ok bool) {
	switch {
	case strings.HasSuffix(symbol, SuffixNSE) && len(symbol) > len(SuffixNSE):
		return strings.TrimSuffix(symbol, SuffixNSE), NSE, true
	case strings.HasSuffix(symbol, SuffixBSE) && len(symbol) > len(SuffixBSE):
		return strings.TrimSuffix(symbol, SuffixBSE), BSE, true
	default:
		return symbol, Unknown, false
	}
}

// Qualify appends the provider suffix for m to a bare symbol
func Qualify(base string, m Market) string {
	switch m {
	case NSE:
		return base + SuffixNSE
	case BSE:
		return base + SuffixBSE
	default:
		return base
	}
}

// Info describes the currency and venue of a market
type Info struct {
	Currency       string
	CurrencySymbol string
	Flag           string
	Exchange       string
}

// Info returns display metadata for m
func (m Market) Info() Info {
	switch m {
	case NSE:
		return Info{Currency: "INR", CurrencySymbol: "₹", Flag: "🇮🇳", Exchange: "National Stock Exchange of India"}
	case BSE:
		return Info{Currency: "INR", CurrencySymbol: "₹", Flag: "🇮🇳", Exchange: "Bombay Stock Exchange"}
	case US:
		return Info{Currency: "USD", CurrencySymbol: "$", Flag: "🇺🇸", Exchange: "US Markets"}
	default:
		return Info{Currency: "USD", CurrencySymbol: "$", Flag: "🌐", Exchange: "Unknown"}
	}
}

// Indian reports whether the market quotes in rupees
func (m Market) Indian() bool {
	return m == NSE || m == BSE
}

// ResolutionCache stores resolutions keyed by normalized input.
// Implementations may drop entries early; freshness is judged by the caller.
type ResolutionCache interface {
	Get(ctx context.Context, input string) (Resolution, bool, error)
	Put(ctx context.Context, r Resolution) error
}
