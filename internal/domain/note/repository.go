package note

import "context"

// Repository persists user notes
type Repository interface {
	Create(ctx context.Context, n *Note) error
	// ListByUser returns the newest notes first
	ListByUser(ctx context.Context, userID int64, limit int) ([]Note, error)
}
