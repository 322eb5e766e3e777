package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/testsupport"
)

func TestResolutionCache_RoundTrip(t *testing.T) {
	client := testsupport.NewTestRedis(t)
	cache := NewResolutionCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "RELIANCE")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	want := market.Resolution{Input: "RELIANCE", Symbol: "RELIANCE.NS", Market: market.NSE, ResolvedAt: at}
	require.NoError(t, cache.Put(ctx, want))

	got, ok, err := cache.Get(ctx, "RELIANCE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Symbol, got.Symbol)
	assert.Equal(t, want.Market, got.Market)
	assert.True(t, want.ResolvedAt.Equal(got.ResolvedAt))

	ttl, err := client.TTL(ctx, resolutionKeyPrefix+"RELIANCE").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCommentaryStore_RoundTrip(t *testing.T) {
	client := testsupport.NewTestRedis(t)
	store := NewCommentaryStore(client)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "commentary:AAPL:analysis:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "commentary:AAPL:analysis:1", []byte(`{"text":"hi"}`), time.Minute))
	got, ok, err := store.Get(ctx, "commentary:AAPL:analysis:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"text":"hi"}`, string(got))

	require.NoError(t, store.Delete(ctx, "commentary:AAPL:analysis:1"))
	_, ok, err = store.Get(ctx, "commentary:AAPL:analysis:1")
	require.NoError(t, err)
	assert.False(t, ok)
}
