package ai

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/testsupport"
	"marketpulse/pkg/errors"
)

type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) Name() ProviderName { return ProviderNameGroq }
func (p *countingProvider) Model() string      { return DefaultGroqModel }

func (p *countingProvider) Chat(context.Context, ChatRequest) (*ChatResponse, error) {
	p.calls.Add(1)
	return &ChatResponse{Content: "ok"}, nil
}

func TestWithRateLimit_Passthrough(t *testing.T) {
	p := &countingProvider{}

	assert.Nil(t, NewRateLimiter(nil, ProviderNameGroq, 0, 5))
	assert.Same(t, p, WithRateLimit(p, nil))
	assert.Equal(t, Unavailable{}, WithRateLimit(Unavailable{}, NewLocalLimiter(60, 1)))

	l := NewRateLimiter(nil, ProviderNameGroq, 30, 0)
	require.IsType(t, &LocalLimiter{}, l)
	assert.Equal(t, 30.0, l.Limit())
}

func TestRateLimited_StopsAtBudget(t *testing.T) {
	p := &countingProvider{}
	llm := WithRateLimit(p, NewLocalLimiter(60, 2))

	for i := 0; i < 2; i++ {
		resp, err := llm.Chat(context.Background(), ChatRequest{})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Content)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := llm.Chat(ctx, ChatRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRateLimitExceeded)
	assert.Contains(t, err.Error(), "groq limiter (60 req/min")
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, ProviderNameGroq, llm.Name())
}

func TestRedisRateLimiter_SharedAcrossReplicas(t *testing.T) {
	client := testsupport.NewTestRedis(t)
	ctx := context.Background()

	a := NewRedisRateLimiter(client, ProviderNameGroq, 60, 1)
	b := NewRedisRateLimiter(client, ProviderNameGroq, 60, 1)
	other := NewRedisRateLimiter(client, ProviderNameOpenAI, 60, 1)
	require.NoError(t, a.Reset(ctx))

	require.NoError(t, a.Wait(ctx))

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Wait(short), context.DeadlineExceeded)
	assert.NoError(t, other.Wait(ctx))

	require.NoError(t, b.Reset(ctx))
	assert.NoError(t, b.Wait(ctx))
	assert.Equal(t, 60.0, b.Limit())
}
