package ai

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"marketpulse/pkg/errors"
)

const rateLimitKeyPrefix = "marketpulse:ratelimit:ai:"

// KEYS[1] bucket, ARGV rate per second, burst, now in seconds.
// Returns 1 when a token was taken.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call('HMGET', KEYS[1], 'tokens', 'last_update')
local tokens = tonumber(data[1])
local last = tonumber(data[2])
if not tokens then
    tokens = burst
    last = now
end

tokens = math.min(burst, tokens + math.max(0, now - last) * rate)
local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_update', now)
redis.call('EXPIRE', KEYS[1], 3600)
return allowed
`)

// RedisRateLimiter is a token bucket kept in Redis and shared by every replica
type RedisRateLimiter struct {
	client   *redis.Client
	provider ProviderName
	perSec   float64
	burst    int
	key      string
}

// NewRedisRateLimiter creates a limiter keyed by provider
func NewRedisRateLimiter(client *redis.Client, provider ProviderName, reqPerMinute float64, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		provider: provider,
		perSec:   reqPerMinute / 60,
		burst:    burstOrDefault(reqPerMinute, burst),
		key:      rateLimitKeyPrefix + string(provider),
	}
}

// Wait polls the bucket at the refill interval until a token is free
func (l *RedisRateLimiter) Wait(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / l.perSec)
	for {
		ok, err := l.take(ctx)
		if err != nil {
			return errors.Wrapf(err, "redis limiter for %s", l.provider)
		}
		if ok {
			return nil
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *RedisRateLimiter) Limit() float64 { return l.perSec * 60 }

// Reset drops the stored bucket
func (l *RedisRateLimiter) Reset(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}

func (l *RedisRateLimiter) take(ctx context.Context) (bool, error) {
	now := float64(time.Now().UnixNano()) / float64(time.Second)
	n, err := tokenBucketScript.Run(ctx, l.client, []string{l.key}, l.perSec, l.burst, now).Int()
	if err != nil {
		return false, errors.Wrap(err, "token bucket script")
	}
	return n == 1, nil
}
