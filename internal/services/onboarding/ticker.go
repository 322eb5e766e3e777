package onboarding

import (
	"regexp"
	"strings"
)

var tickerToken = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}(\.NS|\.BO)?$`)

// words that look like tickers in casual upper-case text
var notTicker = map[string]bool{
	"A": true, "I": true, "AM": true, "AN": true, "AND": true, "ARE": true, "AT": true,
	"BE": true, "BUY": true, "CAN": true, "DO": true, "FOR": true, "HI": true, "HOW": true,
	"IF": true, "IN": true, "IS": true, "IT": true, "ME": true, "MY": true, "NO": true,
	"NOT": true, "NOW": true, "OF": true, "OK": true, "ON": true, "OR": true, "SELL": true,
	"SO": true, "THE": true, "TO": true, "UP": true, "US": true, "WE": true, "WHAT": true,
	"WHY": true, "YES": true, "YOU": true, "AI": true, "CEO": true, "ETF": true, "IPO": true,
	"EPS": true, "USD": true, "INR": true, "HOLD": true, "HELLO": true, "HELP": true,
	"THANKS": true, "PLEASE": true, "STOCK": true, "PRICE": true,
}

// PlausibleTicker returns the first token in text that looks like a ticker.
// A $-prefixed token matches in any case; bare tokens must be upper case.
func PlausibleTicker(text string) (string, bool) {
	for _, field := range strings.Fields(text) {
		tok := strings.TrimRight(field, "?!,.:;)\"'")
		tok = strings.TrimLeft(tok, "(\"'")

		if strings.HasPrefix(tok, "$") {
			t := strings.ToUpper(strings.TrimPrefix(tok, "$"))
			if tickerToken.MatchString(t) {
				return t, true
			}
			continue
		}
		if tickerToken.MatchString(tok) && !notTicker[tok] {
			return tok, true
		}
	}
	return "", false
}
