package watchlist

import (
	"regexp"
	"strings"
	"time"
)

// Entry is one ticker on one user's watchlist. (UserID, Ticker) is unique.
type Entry struct {
	UserID  int64     `db:"user_id"`
	Ticker  string    `db:"ticker"`
	AddedAt time.Time `db:"added_at"`
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-&]{0,19}$`)

// NormalizeTicker upper-cases and trims a user-typed symbol
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$")))
}

// ValidTicker reports whether a normalized symbol has a plausible shape
func ValidTicker(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}
