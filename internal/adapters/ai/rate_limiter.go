package ai

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"marketpulse/pkg/errors"
)

// RateLimiter gates calls to an LLM backend
type RateLimiter interface {
	// Wait blocks until a call may proceed or ctx is done
	Wait(ctx context.Context) error

	// Limit returns the configured rate in requests per minute
	Limit() float64
}

// LocalLimiter is an in-process token bucket, enough for a single replica
type LocalLimiter struct {
	limiter      *rate.Limiter
	reqPerMinute float64
}

// NewLocalLimiter allows reqPerMinute calls with bursts of up to burst
func NewLocalLimiter(reqPerMinute float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		limiter:      rate.NewLimiter(rate.Limit(reqPerMinute/60), burstOrDefault(reqPerMinute, burst)),
		reqPerMinute: reqPerMinute,
	}
}

func (l *LocalLimiter) Wait(ctx context.Context) error { return l.limiter.Wait(ctx) }
func (l *LocalLimiter) Limit() float64                 { return l.reqPerMinute }

// NewRateLimiter picks the Redis limiter when a client is given so replicas
// share one budget per provider. A non-positive rate disables limiting.
func NewRateLimiter(client *redis.Client, provider ProviderName, reqPerMinute float64, burst int) RateLimiter {
	if reqPerMinute <= 0 {
		return nil
	}
	if client != nil {
		return NewRedisRateLimiter(client, provider, reqPerMinute, burst)
	}
	return NewLocalLimiter(reqPerMinute, burst)
}

// burst defaults to a tenth of the per-minute rate, at least one
func burstOrDefault(reqPerMinute float64, burst int) int {
	if burst > 0 {
		return burst
	}
	if b := int(reqPerMinute / 10); b > 1 {
		return b
	}
	return 1
}

// RateLimited waits on a limiter before every Chat call
type RateLimited struct {
	ChatProvider
	limiter RateLimiter
}

// WithRateLimit wraps p so each Chat call waits on l. A nil limiter or the
// Unavailable provider is returned unchanged.
func WithRateLimit(p ChatProvider, l RateLimiter) ChatProvider {
	if l == nil {
		return p
	}
	if _, none := p.(Unavailable); none {
		return p
	}
	return &RateLimited{ChatProvider: p, limiter: l}
}

// Chat waits for a slot then forwards to the wrapped provider
func (r *RateLimited) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "%s limiter (%.0f req/min, waited %s): %v",
			r.ChatProvider.Name(), r.limiter.Limit(), time.Since(start).Round(time.Millisecond), err)
	}
	return r.ChatProvider.Chat(ctx, req)
}
