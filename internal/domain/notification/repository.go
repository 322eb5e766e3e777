package notification

import (
	"context"
	"time"
)

// Repository is the dedup store for delivered alerts
type Repository interface {
	// MarkSent records the hash and reports false when it was already present
	MarkSent(ctx context.Context, n *Sent) (bool, error)
	WasSent(ctx context.Context, hash string) (bool, error)
	// DeleteOlderThan removes records sent before cutoff and returns the count
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
