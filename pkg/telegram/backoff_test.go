package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		backoff Backoff
		attempt int
		want    time.Duration
	}{
		{"exponential first", DefaultBackoff(), 1, time.Second},
		{"exponential third", DefaultBackoff(), 3, 4 * time.Second},
		{"exponential capped", DefaultBackoff(), 10, time.Minute},
		{"exponential huge attempt", DefaultBackoff(), 5000, time.Minute},
		{"linear", Backoff{Strategy: BackoffLinear, InitialDelay: 2 * time.Second, MaxDelay: time.Minute}, 3, 6 * time.Second},
		{"fixed", Backoff{Strategy: BackoffFixed, InitialDelay: 5 * time.Second}, 7, 5 * time.Second},
		{"zero attempt treated as first", DefaultBackoff(), 0, time.Second},
		{"zero value gets defaults", Backoff{}, 2, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.backoff.Delay(tt.attempt))
		})
	}
}

func TestBackoffExhausted(t *testing.T) {
	unlimited := DefaultBackoff()
	assert.False(t, unlimited.Exhausted(1_000_000))

	limited := Backoff{MaxAttempts: 3}
	assert.False(t, limited.Exhausted(3))
	assert.True(t, limited.Exhausted(4))
}

func TestBackoffWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := Backoff{Strategy: BackoffFixed, InitialDelay: time.Hour}
	assert.ErrorIs(t, b.Wait(ctx, 1), context.Canceled)
}
