package user

import (
	"context"
	"fmt"
	"time"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Service provides business logic for user operations.
type Service struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

// NewService constructs a user service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Get().With("component", "user_service"), now: time.Now}
}

// Touch creates the user on first contact and refreshes last_seen on every message.
func (s *Service) Touch(ctx context.Context, telegramID int64, username string, countCommand bool) (*User, error) {
	if telegramID == 0 {
		return nil, fmt.Errorf("touch user: %w", errors.NewValidationError("telegram_id", "telegram id required", telegramID))
	}
	u, err := s.repo.Upsert(ctx, telegramID, username, countCommand)
	if err != nil {
		return nil, fmt.Errorf("touch user: %w", err)
	}
	return u, nil
}

// Get fetches a user by Telegram ID.
func (s *Service) Get(ctx context.Context, telegramID int64) (*User, error) {
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SaveOnboarding persists step, risk and interests together.
func (s *Service) SaveOnboarding(ctx context.Context, u *User) error {
	if u == nil {
		return fmt.Errorf("save onboarding: user is nil")
	}
	u.UpdatedAt = s.now()
	if err := s.repo.UpdateOnboarding(ctx, u); err != nil {
		return fmt.Errorf("save onboarding: %w", err)
	}
	return nil
}

// SetRisk parses and stores a risk profile.
func (s *Service) SetRisk(ctx context.Context, telegramID int64, input string) (RiskProfile, error) {
	risk, ok := ParseRiskProfile(input)
	if !ok {
		return "", errors.NewValidationError("risk", "Risk level must be aggressive, moderate or conservative", input)
	}
	if err := s.repo.UpdateRisk(ctx, telegramID, risk); err != nil {
		return "", fmt.Errorf("set risk: %w", err)
	}
	s.log.Debugw("Risk profile updated", "telegram_id", telegramID, "risk", risk)
	return risk, nil
}

// SetInterval validates and stores the per-user alert interval.
func (s *Service) SetInterval(ctx context.Context, telegramID int64, minutes int) error {
	if minutes < MinIntervalMinutes {
		return errors.NewValidationError("interval", "Interval must be at least 1 minute", minutes)
	}
	if minutes > MaxIntervalMinutes {
		return errors.NewValidationError("interval", "Interval cannot exceed 24 hours (1440 minutes)", minutes)
	}
	if err := s.repo.UpdateInterval(ctx, telegramID, minutes); err != nil {
		return fmt.Errorf("set interval: %w", err)
	}
	return nil
}

// DueForScan returns the users with a watchlist whose alert interval has elapsed.
func (s *Service) DueForScan(ctx context.Context, now time.Time) ([]*User, error) {
	users, err := s.repo.ListWithWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users for scan: %w", err)
	}
	due := make([]*User, 0, len(users))
	for _, u := range users {
		if u.DueForScan(now) {
			due = append(due, u)
		}
	}
	return due, nil
}

// MarkScanned records a completed monitor sweep for the user.
func (s *Service) MarkScanned(ctx context.Context, telegramID int64, at time.Time) error {
	if err := s.repo.MarkScanned(ctx, telegramID, at); err != nil {
		return fmt.Errorf("mark scanned: %w", err)
	}
	return nil
}
