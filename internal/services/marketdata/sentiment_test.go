package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/adapters/reddit"
	"marketpulse/internal/domain/market"
)

func TestScoreSentiment_WeightsByPostScore(t *testing.T) {
	posts := []reddit.Post{
		{Title: "TSLA calls, bullish", Score: 10},     // bull 2 * 2
		{Title: "selling, this will crash", Score: 0}, // bear "sell","crash" -> 2 * 1
		{Title: "meh", Score: 50},
		{Title: "another long", Score: 20}, // bull 1 * 3
	}

	s := ScoreSentiment("TSLA", posts)

	assert.Equal(t, 4, s.Mentions)
	assert.InDelta(t, 7.0, s.BullishTotal, 1e-9)
	assert.InDelta(t, 2.0, s.BearishTotal, 1e-9)
	assert.Equal(t, 0.56, s.Score)
	assert.Equal(t, market.Bullish, s.Label)

	require.Len(t, s.TopPosts, 3)
	assert.Equal(t, "meh", s.TopPosts[0].Title)
	assert.Equal(t, "another long", s.TopPosts[1].Title)
	assert.Equal(t, "TSLA calls, bullish", s.TopPosts[2].Title)
}

func TestScoreSentiment_NoKeywordsIsNeutralZero(t *testing.T) {
	s := ScoreSentiment("X", []reddit.Post{{Title: "earnings thread"}})
	assert.Equal(t, 0.0, s.Score)
	assert.Equal(t, market.Neutral, s.Label)
	assert.Equal(t, 1, s.Mentions)
}

func TestScoreSentiment_Bearish(t *testing.T) {
	s := ScoreSentiment("X", []reddit.Post{{Title: "bearish, buying puts"}})
	// bear: bearish, puts = 2; bull: buy = 1
	assert.Equal(t, -0.33, s.Score)
	assert.Equal(t, market.Bearish, s.Label)
}

func TestScoreSentiment_Empty(t *testing.T) {
	assert.Equal(t, market.EmptySentiment("X"), ScoreSentiment("X", nil))
}

func TestRankMentions(t *testing.T) {
	posts := []reddit.Post{
		{Title: "NVDA and AMD are THE plays", Body: "NVDA NVDA"},
		{Title: "AMD earnings, I think YOLO"},
		{Title: "lowercase nvda ignored"},
	}

	got := RankMentions(posts, 10)
	assert.Equal(t, []market.Mention{{Ticker: "NVDA", Count: 3}, {Ticker: "AMD", Count: 2}}, got)

	assert.Len(t, RankMentions(posts, 1), 1)
}
