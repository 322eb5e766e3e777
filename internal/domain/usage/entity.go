package usage

import (
	"time"

	"github.com/google/uuid"
)

// Status of a handled command
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Event is one handled bot command
type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ChatID    int64     `db:"chat_id" json:"chat_id"`
	Command   string    `db:"command" json:"command"`
	Args      string    `db:"args" json:"args"`
	Status    string    `db:"status" json:"status"`
	LatencyMs int64     `db:"latency_ms" json:"latency_ms"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CommandCount is one row of the usage leaderboard
type CommandCount struct {
	Command string `db:"command"`
	Count   int64  `db:"count"`
}

// NewEvent stamps a fresh event id and time
func NewEvent(userID, chatID int64, command, args, status string, latency time.Duration) *Event {
	return &Event{
		ID:        uuid.New(),
		UserID:    userID,
		ChatID:    chatID,
		Command:   command,
		Args:      truncate(args, 256),
		Status:    status,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
