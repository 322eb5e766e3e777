package postgres

import (
	"context"

	"marketpulse/internal/domain/watchlist"
)

var _ watchlist.Repository = (*WatchlistRepository)(nil)

// WatchlistRepository implements watchlist.Repository
type WatchlistRepository struct {
	db DBTX
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db DBTX) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts the pair; duplicates are a no-op
func (r *WatchlistRepository) Add(ctx context.Context, userID int64, ticker string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO watchlist (user_id, ticker) VALUES ($1, $2) ON CONFLICT (user_id, ticker) DO NOTHING`,
		userID, ticker)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Remove deletes the pair
func (r *WatchlistRepository) Remove(ctx context.Context, userID int64, ticker string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND ticker = $2`, userID, ticker)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List returns the user's entries ordered by ticker
func (r *WatchlistRepository) List(ctx context.Context, userID int64) ([]watchlist.Entry, error) {
	var entries []watchlist.Entry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT user_id, ticker, added_at FROM watchlist WHERE user_id = $1 ORDER BY ticker`, userID)
	return entries, err
}

// Contains reports whether the pair exists
func (r *WatchlistRepository) Contains(ctx context.Context, userID int64, ticker string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND ticker = $2)`, userID, ticker)
	return ok, err
}

// ListAllTickers returns every distinct watched ticker
func (r *WatchlistRepository) ListAllTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := r.db.SelectContext(ctx, &tickers, `SELECT DISTINCT ticker FROM watchlist ORDER BY ticker`)
	return tickers, err
}

// Watchers returns the users watching ticker
func (r *WatchlistRepository) Watchers(ctx context.Context, ticker string) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM watchlist WHERE ticker = $1 ORDER BY user_id`, ticker)
	return ids, err
}
