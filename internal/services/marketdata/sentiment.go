package marketdata

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"marketpulse/internal/adapters/reddit"
	"marketpulse/internal/domain/market"
)

// Keyword lists of the sentiment heuristic. A keyword counts once per post when it occurs anywhere in the text.
var (
	BullishKeywords = []string{"bullish", "moon", "calls", "buy", "long", "rocket", "🚀", "pump", "gain"}
	BearishKeywords = []string{"bearish", "puts", "sell", "short", "dump", "crash", "loss", "bag"}
)

// TopPostCount is the number of posts kept on a Sentiment record
const TopPostCount = 3

// ScoreSentiment applies the keyword heuristic: each post contributes its keyword hits
// weighted by 1+score/10, and the aggregate is (bull-bear)/(bull+bear) rounded to 2 decimals.
// It is a rough mood indicator, not a calibrated model.
func ScoreSentiment(symbol string, posts []reddit.Post) market.Sentiment {
	out := market.EmptySentiment(symbol)
	if len(posts) == 0 {
		return out
	}

	var bull, bear float64
	for _, p := range posts {
		text := strings.ToLower(p.Title + " " + p.Body)
		weight := 1 + float64(p.Score)/10
		bull += float64(countKeywords(text, BullishKeywords)) * weight
		bear += float64(countKeywords(text, BearishKeywords)) * weight
	}

	out.Mentions = len(posts)
	out.BullishTotal = bull
	out.BearishTotal = bear
	if bull+bear != 0 {
		out.Score = math.Round((bull-bear)/(bull+bear)*100) / 100
	}
	out.Label = market.LabelFor(out.Score)

	ranked := make([]reddit.Post, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > TopPostCount {
		ranked = ranked[:TopPostCount]
	}
	for _, p := range ranked {
		out.TopPosts = append(out.TopPosts, market.SocialPost{
			Title:     p.Title,
			Subreddit: p.Subreddit,
			URL:       p.URL,
			Score:     p.Score,
			Comments:  p.Comments,
			Created:   p.Created,
		})
	}
	return out
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

var mentionPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// mentionStopwords are frequent all-caps words that are not tickers
var mentionStopwords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "ARE": true, "YOU": true, "NOT": true,
	"BUT": true, "CAN": true, "ALL": true, "NEW": true, "GET": true, "OUT": true,
	"NOW": true, "ONE": true, "WAY": true, "USE": true, "HER": true, "HIM": true,
	"HIS": true, "SHE": true, "HAS": true, "HAD": true, "WAS": true, "ITS": true,
	"A": true, "I": true, "DD": true, "YOLO": true, "CEO": true, "IPO": true,
	"ETF": true, "USA": true, "USD": true, "EPS": true, "ATH": true, "IMO": true,
	"WSB": true, "GDP": true, "FED": true, "AI": true, "EV": true, "OP": true,
}

// RankMentions counts ticker-shaped tokens across posts and keeps the top limit
func RankMentions(posts []reddit.Post, limit int) []market.Mention {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, tok := range mentionPattern.FindAllString(p.Title+" "+p.Body, -1) {
			if !mentionStopwords[tok] {
				counts[tok]++
			}
		}
	}

	mentions := make([]market.Mention, 0, len(counts))
	for t, c := range counts {
		mentions = append(mentions, market.Mention{Ticker: t, Count: c})
	}
	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Count != mentions[j].Count {
			return mentions[i].Count > mentions[j].Count
		}
		return mentions[i].Ticker < mentions[j].Ticker
	})
	if limit > 0 && len(mentions) > limit {
		mentions = mentions[:limit]
	}
	return mentions
}
