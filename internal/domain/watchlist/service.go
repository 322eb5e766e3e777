package watchlist

import (
	"context"
	"sort"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Service coordinates watchlist operations
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a watchlist service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "watchlist_service"),
	}
}

func normalize(raw string) (string, error) {
	ticker := NormalizeTicker(raw)
	if !ValidTicker(ticker) {
		return "", errors.NewValidationError("ticker", "Invalid ticker symbol", raw)
	}
	return ticker, nil
}

// Add puts a ticker on the user's watchlist. created is false for duplicates.
func (s *Service) Add(ctx context.Context, userID int64, raw string) (ticker string, created bool, err error) {
	ticker, err = normalize(raw)
	if err != nil {
		return "", false, err
	}
	created, err = s.repo.Add(ctx, userID, ticker)
	if err != nil {
		return "", false, errors.Wrap(err, "add watchlist entry")
	}
	if created {
		s.log.Infow("Ticker added to watchlist", "user_id", userID, "ticker", ticker)
	}
	return ticker, created, nil
}

// Remove takes a ticker off the user's watchlist. removed is false when it was not there.
func (s *Service) Remove(ctx context.Context, userID int64, raw string) (ticker string, removed bool, err error) {
	ticker, err = normalize(raw)
	if err != nil {
		return "", false, err
	}
	removed, err = s.repo.Remove(ctx, userID, ticker)
	if err != nil {
		return "", false, errors.Wrap(err, "remove watchlist entry")
	}
	return ticker, removed, nil
}

// Tickers returns the user's tickers in lexicographic order
func (s *Service) Tickers(ctx context.Context, userID int64) ([]string, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list watchlist")
	}
	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		tickers = append(tickers, e.Ticker)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Contains reports whether the user already watches ticker
func (s *Service) Contains(ctx context.Context, userID int64, ticker string) (bool, error) {
	ok, err := s.repo.Contains(ctx, userID, NormalizeTicker(ticker))
	if err != nil {
		return false, errors.Wrap(err, "check watchlist")
	}
	return ok, nil
}

// AllTickers returns every watched ticker across users, sorted
func (s *Service) AllTickers(ctx context.Context) ([]string, error) {
	tickers, err := s.repo.ListAllTickers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all tickers")
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Watchers returns the users watching ticker
func (s *Service) Watchers(ctx context.Context, ticker string) ([]int64, error) {
	ids, err := s.repo.Watchers(ctx, NormalizeTicker(ticker))
	if err != nil {
		return nil, errors.Wrap(err, "list watchers")
	}
	return ids, nil
}
