package postgres

import (
	"context"

	"marketpulse/internal/domain/note"
)

var _ note.Repository = (*NoteRepository)(nil)

// NoteRepository stores user notes
type NoteRepository struct {
	db DBTX
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note
func (r *NoteRepository) Create(ctx context.Context, n *note.Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_notes (id, user_id, text, created_at) VALUES ($1, $2, $3, $4)`,
		n.ID, n.UserID, n.Text, n.CreatedAt)
	return err
}

// ListByUser returns the newest notes first
func (r *NoteRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]note.Note, error) {
	var notes []note.Note
	err := r.db.SelectContext(ctx, &notes, `
		SELECT id, user_id, text, created_at FROM user_notes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	return notes, err
}
