package user

import (
	"context"
	"time"
)

// Repository defines the interface for user data access
// Implementation is in internal/repository/postgres/user.go
type Repository interface {
	// Upsert inserts the user or refreshes username and last_seen when it exists,
	// incrementing command_count when countCommand is set. Returns the stored row.
	Upsert(ctx context.Context, telegramID int64, username string, countCommand bool) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	UpdateOnboarding(ctx context.Context, u *User) error
	UpdateRisk(ctx context.Context, telegramID int64, risk RiskProfile) error
	UpdateInterval(ctx context.Context, telegramID int64, minutes int) error
	MarkScanned(ctx context.Context, telegramID int64, at time.Time) error
	// ListWithWatchlist returns users that watch at least one ticker
	ListWithWatchlist(ctx context.Context) ([]*User, error)
}
