package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/adapters/ai"
	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/user"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

type fakeChat struct {
	mu       sync.Mutex
	requests []ai.ChatRequest
	reply    string
	err      error
}

func (f *fakeChat) Name() ai.ProviderName { return ai.ProviderNameGroq }
func (f *fakeChat) Model() string         { return "test-model" }

func (f *fakeChat) Chat(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ai.ChatResponse{Model: "test-model", Content: f.reply}, nil
}

func (f *fakeChat) last() ai.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeChat) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func sampleContext() *CommandContext {
	s := newSubject(us("AAPL"), SectionsAnalysis)
	s.Data.Quote.Price = market.Some(189.5)
	s.Data.Quote.ChangePercent = market.Some(1.25)
	s.Data.Fundamentals.PE = market.Some(28.4)
	s.Data.Profile.Industry = "Technology"
	s.Data.Performance.Return5D = market.Some(-0.4)
	s.Data.News.Items = []market.NewsItem{{Headline: "Apple unveils new chip"}}
	return &CommandContext{
		Subjects: []Subject{s},
		User:     UserContext{TelegramID: 42, Risk: user.RiskConservative, Interests: "dividends"},
	}
}

func TestAdvisor_AnalysisUsesSettingsAndContext(t *testing.T) {
	chat := &fakeChat{reply: "  📝 <b>[SUMMARY]</b> solid  "}
	adv := NewAdvisor(chat, nil, nil, logger.Nop())

	out := adv.Analysis(context.Background(), sampleContext())
	assert.Equal(t, "📝 <b>[SUMMARY]</b> solid", out)

	req := chat.last()
	assert.Equal(t, 0.3, req.Temperature)
	assert.Equal(t, 1000, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, ai.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Industry: Technology")
	assert.Contains(t, req.Messages[0].Content, "Conservative")
	assert.Contains(t, req.Messages[1].Content, "$189.50 (+1.25%)")
	assert.Contains(t, req.Messages[1].Content, "P/E: 28.40")
	assert.Contains(t, req.Messages[1].Content, "- Apple unveils new chip")
}

func TestAdvisor_WhyAndCompareSettings(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	adv := NewAdvisor(chat, nil, nil, logger.Nop())

	adv.Why(context.Background(), sampleContext())
	assert.Equal(t, 0.2, chat.last().Temperature)
	assert.Equal(t, 300, chat.last().MaxTokens)

	cc := sampleContext()
	second := newSubject(us("MSFT"), SectionsCompare)
	second.Data.Quote.Price = market.Some(410)
	cc.Subjects = append(cc.Subjects, second)

	adv.Compare(context.Background(), cc)
	req := chat.last()
	assert.Equal(t, 0.2, req.Temperature)
	assert.Equal(t, 800, req.MaxTokens)
	assert.Contains(t, req.Messages[1].Content, "Stock 1: AAPL")
	assert.Contains(t, req.Messages[1].Content, "Stock 2: MSFT")
	assert.Contains(t, req.Messages[1].Content, "$410.00")
}

func TestAdvisor_FallsBackWhenUnavailable(t *testing.T) {
	adv := NewAdvisor(ai.Unavailable{}, nil, nil, logger.Nop())
	assert.False(t, adv.Enabled())
	assert.Equal(t, AIUnavailable, adv.Analysis(context.Background(), sampleContext()))

	failing := NewAdvisor(&fakeChat{err: errors.ErrTimeout}, nil, nil, logger.Nop())
	assert.Equal(t, AIUnavailable, failing.Why(context.Background(), sampleContext()))

	empty := NewAdvisor(&fakeChat{reply: "   "}, nil, nil, logger.Nop())
	assert.Equal(t, AIUnavailable, empty.Analysis(context.Background(), sampleContext()))
}

func TestAdvisor_AskNeedsQuestion(t *testing.T) {
	chat := &fakeChat{reply: "• Margins expand"}
	adv := NewAdvisor(chat, nil, nil, logger.Nop())

	cc := sampleContext()
	assert.Equal(t, AIUnavailable, adv.Ask(context.Background(), cc))
	assert.Zero(t, chat.calls())

	cc.Question = "Is the buyback sustainable?"
	assert.Equal(t, "• Margins expand", adv.Ask(context.Background(), cc))
	assert.Contains(t, chat.last().Messages[1].Content, "Question: Is the buyback sustainable?")
}

func TestAdvisor_CompareNeedsTwoSubjects(t *testing.T) {
	adv := NewAdvisor(&fakeChat{reply: "x"}, nil, nil, logger.Nop())
	assert.Equal(t, AIUnavailable, adv.Compare(context.Background(), sampleContext()))
}

func TestAdvisor_ReusesCachedCommentary(t *testing.T) {
	chat := &fakeChat{reply: "cached answer"}
	cache := NewCommentaryCache(DefaultCacheConfig(), NewMemoryStore(), logger.Nop())
	adv := NewAdvisor(chat, nil, cache, logger.Nop())

	first := adv.Why(context.Background(), sampleContext())
	second := adv.Why(context.Background(), sampleContext())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, chat.calls())

	moved := sampleContext()
	moved.Subjects[0].Data.Quote.Price = market.Some(199)
	adv.Why(context.Background(), moved)
	assert.Equal(t, 2, chat.calls(), "a price move past the bucket asks again")
}

func TestCommentaryCache_ExpiresAndInvalidates(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	cache := NewCommentaryCache(CacheConfig{Enabled: true, TTL: 10 * time.Minute, PriceBucketPct: 0.01, InvalidationPriceMovePct: 0.01}, store, logger.Nop())
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, KindWhy, "AAPL", "", "text", "m", 100))

	got, ok := cache.Get(ctx, KindWhy, "AAPL", "", 100.05)
	require.True(t, ok, "same bucket")
	assert.Equal(t, "text", got.Text)

	_, ok = cache.Get(ctx, KindWhy, "AAPL", "other", 100)
	assert.False(t, ok, "variant is part of the key")

	now = now.Add(11 * time.Minute)
	_, ok = cache.Get(ctx, KindWhy, "AAPL", "", 100)
	assert.False(t, ok, "expired")

	assert.Equal(t, int64(1), cache.Stats()["hits"])
}

func TestCommentaryCache_DisabledAndNil(t *testing.T) {
	var nilCache *CommentaryCache
	_, ok := nilCache.Get(context.Background(), KindWhy, "AAPL", "", 1)
	assert.False(t, ok)
	assert.NoError(t, nilCache.Set(context.Background(), KindWhy, "AAPL", "", "t", "m", 1))

	off := NewCommentaryCache(CacheConfig{Enabled: false}, NewMemoryStore(), logger.Nop())
	require.NoError(t, off.Set(context.Background(), KindWhy, "AAPL", "", "t", "m", 1))
	_, ok = off.Get(context.Background(), KindWhy, "AAPL", "", 1)
	assert.False(t, ok)
}
