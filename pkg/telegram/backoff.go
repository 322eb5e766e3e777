package telegram

import (
	"context"
	"math"
	"time"
)

// BackoffStrategy defines how the delay grows between failed fetches
type BackoffStrategy string

const (
	// BackoffExponential uses initial * multiplier^(attempt-1)
	BackoffExponential BackoffStrategy = "exponential"
	// BackoffLinear uses initial * attempt
	BackoffLinear BackoffStrategy = "linear"
	// BackoffFixed always waits the initial delay
	BackoffFixed BackoffStrategy = "fixed"
)

// Backoff is the retry policy applied when a long-poll fetch fails
type Backoff struct {
	Strategy     BackoffStrategy
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// MaxAttempts is the number of consecutive failures tolerated; 0 means unlimited
	MaxAttempts int
}

// DefaultBackoff returns the policy used by the bot: 1s, 2s, 4s ... capped at one minute, forever
func DefaultBackoff() Backoff {
	return Backoff{
		Strategy:     BackoffExponential,
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
	}
}

func (b Backoff) normalized() Backoff {
	if b.InitialDelay <= 0 {
		b.InitialDelay = time.Second
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = time.Minute
	}
	if b.Multiplier <= 0 {
		b.Multiplier = 2.0
	}
	if b.Strategy == "" {
		b.Strategy = BackoffExponential
	}
	return b
}

// Delay returns the wait before retrying after the given consecutive failure (1-based)
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.normalized()
	if attempt < 1 {
		attempt = 1
	}

	var delay time.Duration
	switch b.Strategy {
	case BackoffExponential:
		factor := math.Pow(b.Multiplier, float64(attempt-1))
		if math.IsInf(factor, 0) || float64(b.InitialDelay)*factor > float64(b.MaxDelay) {
			return b.MaxDelay
		}
		delay = time.Duration(float64(b.InitialDelay) * factor)
	case BackoffLinear:
		delay = b.InitialDelay * time.Duration(attempt)
	case BackoffFixed:
		delay = b.InitialDelay
	default:
		delay = b.InitialDelay
	}

	if delay > b.MaxDelay || delay <= 0 {
		delay = b.MaxDelay
	}
	return delay
}

// Exhausted reports whether attempt exceeds MaxAttempts
func (b Backoff) Exhausted(attempt int) bool {
	return b.MaxAttempts > 0 && attempt > b.MaxAttempts
}

// Wait sleeps for Delay(attempt) or until ctx is done
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
