package note

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxLength bounds a single note
const MaxLength = 1000

// Note is a dated free-text investment note
type Note struct {
	ID        uuid.UUID `db:"id"`
	UserID    int64     `db:"user_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// Theme is a keyword class and how many notes mention it
type Theme struct {
	Name string
	Hits int
}

// Profile is the investment profile derived from a user's notes
type Profile struct {
	NoteCount int
	Themes    []Theme
	Tickers   []string
	FirstAt   time.Time
	LastAt    time.Time
}

// Empty reports whether there were no notes to derive from
func (p Profile) Empty() bool {
	return p.NoteCount == 0
}

var themeKeywords = []struct {
	name     string
	keywords []string
}{
	{"Growth", []string{"growth", "revenue", "expand", "scale", "tam", "disrupt"}},
	{"Value", []string{"value", "undervalued", "cheap", "discount", "p/e", "book value", "margin of safety"}},
	{"Dividend", []string{"dividend", "yield", "income", "payout"}},
	{"Tech", []string{"tech", "ai", "software", "cloud", "semiconductor", "chip", "saas"}},
	{"Energy", []string{"oil", "gas", "energy", "solar", "renewable"}},
	{"Financials", []string{"bank", "financial", "insurance", "fintech"}},
	{"Healthcare", []string{"pharma", "biotech", "health", "medical"}},
	{"Macro", []string{"fed", "rates", "inflation", "recession", "macro", "cpi"}},
	{"Risk control", []string{"hedge", "stop loss", "downside", "drawdown"}},
}

var tickerPattern = regexp.MustCompile(`\$?\b[A-Z]{2,5}(?:\.NS|\.BO)?\b`)

var notTickers = map[string]bool{
	"AI": true, "CEO": true, "CFO": true, "CPI": true, "EPS": true, "ETF": true,
	"FED": true, "GDP": true, "IPO": true, "PE": true, "USA": true, "USD": true, "INR": true,
}

func mentions(text, keyword string) bool {
	if strings.Contains(keyword, " ") || strings.Contains(keyword, "/") {
		return strings.Contains(text, keyword)
	}
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if w == keyword {
			return true
		}
	}
	return false
}

// BuildProfile classifies notes into themes and collects mentioned tickers.
// Themes are ordered by hits, then name.
func BuildProfile(notes []Note) Profile {
	p := Profile{NoteCount: len(notes)}
	if len(notes) == 0 {
		return p
	}

	hits := map[string]int{}
	tickers := map[string]int{}
	for i, n := range notes {
		if i == 0 || n.CreatedAt.Before(p.FirstAt) {
			p.FirstAt = n.CreatedAt
		}
		if n.CreatedAt.After(p.LastAt) {
			p.LastAt = n.CreatedAt
		}

		lower := strings.ToLower(n.Text)
		for _, th := range themeKeywords {
			for _, kw := range th.keywords {
				if mentions(lower, kw) {
					hits[th.name]++
					break
				}
			}
		}
		for _, t := range tickerPattern.FindAllString(n.Text, -1) {
			t = strings.TrimPrefix(t, "$")
			if !notTickers[t] {
				tickers[t]++
			}
		}
	}

	for name, h := range hits {
		p.Themes = append(p.Themes, Theme{Name: name, Hits: h})
	}
	sort.Slice(p.Themes, func(i, j int) bool {
		if p.Themes[i].Hits != p.Themes[j].Hits {
			return p.Themes[i].Hits > p.Themes[j].Hits
		}
		return p.Themes[i].Name < p.Themes[j].Name
	})

	for t := range tickers {
		p.Tickers = append(p.Tickers, t)
	}
	sort.Slice(p.Tickers, func(i, j int) bool {
		if tickers[p.Tickers[i]] != tickers[p.Tickers[j]] {
			return tickers[p.Tickers[i]] > tickers[p.Tickers[j]]
		}
		return p.Tickers[i] < p.Tickers[j]
	})
	if len(p.Tickers) > 5 {
		p.Tickers = p.Tickers[:5]
	}
	return p
}
