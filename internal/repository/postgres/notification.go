package postgres

import (
	"context"
	"time"

	"marketpulse/internal/domain/notification"
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements the alert dedup store
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// MarkSent inserts the hash; false means it was already recorded
func (r *NotificationRepository) MarkSent(ctx context.Context, n *notification.Sent) (bool, error) {
	sentAt := n.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sent_notifications (content_hash, ticker, notification_type, title, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (content_hash) DO NOTHING`,
		n.ContentHash, n.Ticker, string(n.Kind), notification.Title(n.Title), sentAt)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

// WasSent checks for a hash
func (r *NotificationRepository) WasSent(ctx context.Context, hash string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM sent_notifications WHERE content_hash = $1)`, hash)
	return ok, err
}

// DeleteOlderThan purges expired dedup rows
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sent_notifications WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
