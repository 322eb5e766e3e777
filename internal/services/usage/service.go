package usage

import (
	"context"
	"strconv"
	"time"

	"marketpulse/internal/domain/usage"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Publisher streams events to a broker. The Kafka producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

var _ usage.Recorder = (*Service)(nil)

// Service records every handled command in Postgres and, when a publisher is
// configured, on the usage topic.
type Service struct {
	repo      usage.Repository
	publisher Publisher
	topic     string
	log       *logger.Logger
}

// NewService creates a usage service. publisher may be nil.
func NewService(repo usage.Repository, publisher Publisher, topic string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Get()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		topic:     topic,
		log:       log.With("component", "usage_service"),
	}
}

// Record stores e. A publish failure is logged and does not fail the call.
func (s *Service) Record(ctx context.Context, e *usage.Event) error {
	if e == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil usage event")
	}
	if err := s.repo.Store(ctx, e); err != nil {
		return errors.Wrap(err, "store usage event")
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.topic, strconv.FormatInt(e.UserID, 10), e); err != nil {
			s.log.Warnw("Failed to publish usage event", "command", e.Command, "error", err)
		}
	}

	s.log.Debugw("Command usage recorded",
		"command", e.Command,
		"user_id", e.UserID,
		"status", e.Status,
		"latency_ms", e.LatencyMs,
	)
	return nil
}

// TopCommands returns the most used commands over the last window
func (s *Service) TopCommands(ctx context.Context, window time.Duration, limit int) ([]usage.CommandCount, error) {
	out, err := s.repo.TopCommands(ctx, time.Now().Add(-window), limit)
	if err != nil {
		return nil, errors.Wrap(err, "top commands")
	}
	return out, nil
}
