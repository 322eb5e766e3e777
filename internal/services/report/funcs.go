package report

import (
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/services/marketdata"
)

// Funcs returns the formatting helpers available to report templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"price":     marketdata.FormatPrice,
		"money":     marketdata.FormatMoney,
		"pct":       marketdata.FormatPercent,
		"num":       marketdata.FormatNumber,
		"vol":       marketdata.FormatVolume,
		"ratio":     formatRatio,
		"trend":     trendEmoji,
		"ago":       ago,
		"date":      formatDate,
		"comma":     func(n int64) string { return humanize.Comma(n) },
		"fallback":  orString,
		"headlines": takeNews,
		"shares":    formatShares,
		"uptime":    formatUptime,
		"nonempty":  func(s string) bool { return strings.TrimSpace(s) != "" && s != market.NA },
	}
}

// trendEmoji picks 📈, 📉 or ➡️ from the sign of a change
func trendEmoji(v market.Value) string {
	switch {
	case !v.OK || v.V == 0:
		return "➡️"
	case v.V > 0:
		return "📈"
	default:
		return "📉"
	}
}

func formatRatio(v market.Value) string {
	if !v.OK {
		return market.NA
	}
	return decimal.NewFromFloat(v.V).StringFixed(2) + "x"
}

// ago renders t relative to now, e.g. "3 hours ago"
func ago(t, now time.Time) string {
	if t.IsZero() {
		return market.NA
	}
	if now.IsZero() {
		now = time.Now()
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return market.NA
	}
	return t.Format("Jan 2, 2006")
}

func orString(s, fallback string) string {
	if strings.TrimSpace(s) == "" || s == market.NA {
		return fallback
	}
	return s
}

func takeNews(n int, items []market.NewsItem) []market.NewsItem {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// formatShares renders a signed share count, e.g. "+12,000"
func formatShares(v market.Value) string {
	if !v.OK {
		return market.NA
	}
	s := humanize.Comma(int64(v.V))
	if v.V > 0 {
		s = "+" + s
	}
	return s
}

func formatUptime(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Truncate(time.Second).String()
}
