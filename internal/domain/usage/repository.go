package usage

import (
	"context"
	"time"
)

// Repository persists command usage
type Repository interface {
	Store(ctx context.Context, e *Event) error
	TopCommands(ctx context.Context, since time.Time, limit int) ([]CommandCount, error)
}

// Recorder accepts usage events from the dispatcher
type Recorder interface {
	Record(ctx context.Context, e *Event) error
}
