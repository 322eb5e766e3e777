package postgres

import (
	"context"
	"time"

	"marketpulse/internal/domain/usage"
)

var _ usage.Repository = (*UsageRepository)(nil)

// UsageRepository stores the command usage log
type UsageRepository struct {
	db DBTX
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

// Store writes one event; replays of the same id are ignored
func (r *UsageRepository) Store(ctx context.Context, e *usage.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO command_usage (id, user_id, chat_id, command, args, status, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.ChatID, e.Command, e.Args, e.Status, e.LatencyMs, e.CreatedAt)
	return err
}

// TopCommands counts commands since a point in time
func (r *UsageRepository) TopCommands(ctx context.Context, since time.Time, limit int) ([]usage.CommandCount, error) {
	var out []usage.CommandCount
	err := r.db.SelectContext(ctx, &out, `
		SELECT command, COUNT(*) AS count FROM command_usage
		WHERE created_at >= $1
		GROUP BY command
		ORDER BY count DESC, command
		LIMIT $2`, since, limit)
	return out, err
}
