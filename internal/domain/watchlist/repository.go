package watchlist

import (
	"context"
)

// Repository defines the interface for watchlist data access
type Repository interface {
	// Add inserts the pair and reports whether a new row was created
	Add(ctx context.Context, userID int64, ticker string) (bool, error)
	// Remove deletes the pair and reports whether a row existed
	Remove(ctx context.Context, userID int64, ticker string) (bool, error)
	List(ctx context.Context, userID int64) ([]Entry, error)
	Contains(ctx context.Context, userID int64, ticker string) (bool, error)
	// ListAllTickers returns the distinct union of every user's tickers
	ListAllTickers(ctx context.Context) ([]string, error)
	// Watchers returns the users watching ticker
	Watchers(ctx context.Context, ticker string) ([]int64, error)
}
