package workers

import (
	"context"
	"time"

	"marketpulse/pkg/logger"
)

// Cleaner drops old alert dedup records
type Cleaner interface {
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
}

// CleanupWorker prunes sent_notifications
type CleanupWorker struct {
	*BaseWorker
	cleaner Cleaner
	maxAge  time.Duration
}

// NewCleanupWorker creates the retention worker
func NewCleanupWorker(cleaner Cleaner, interval, maxAge time.Duration, enabled bool, log *logger.Logger) *CleanupWorker {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &CleanupWorker{
		BaseWorker: NewBaseWorker("notification_cleanup", interval, enabled, log),
		cleaner:    cleaner,
		maxAge:     maxAge,
	}
}

// Run deletes records older than the retention period
func (w *CleanupWorker) Run(ctx context.Context) error {
	n, err := w.cleaner.Cleanup(ctx, w.maxAge)
	if err != nil {
		return err
	}
	w.Log().Infow("Old notifications removed", "deleted", n, "max_age", w.maxAge)
	return nil
}
