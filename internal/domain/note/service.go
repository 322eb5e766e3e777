package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketpulse/pkg/errors"
)

// ProfileNoteLimit is how many recent notes feed the profile
const ProfileNoteLimit = 100

// Service manages notes and derives profiles from them
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a note service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Add stores a note for the user
func (s *Service) Add(ctx context.Context, userID int64, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationError("note", "Usage: /note TEXT\nExample: /note Bullish on cloud margins", text)
	}
	if len([]rune(text)) > MaxLength {
		return nil, errors.NewValidationError("note", fmt.Sprintf("Note is too long (max %d characters)", MaxLength), len(text))
	}
	n := &Note{ID: uuid.New(), UserID: userID, Text: text, CreatedAt: s.now().UTC()}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return n, nil
}

// Recent returns the newest notes first
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]Note, error) {
	notes, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Profile derives the investment profile from the user's recent notes
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	notes, err := s.Recent(ctx, userID, ProfileNoteLimit)
	if err != nil {
		return Profile{}, err
	}
	return BuildProfile(notes), nil
}
