package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	version int
	name    string
	up      string
}

var migrations = []migration{
	{version: 1, name: "initial_schema", up: schemaV1},
	{version: 2, name: "usage_indexes", up: schemaV2},
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id      BIGINT PRIMARY KEY,
	username         TEXT NOT NULL DEFAULT '',
	onboarding_step  SMALLINT NOT NULL DEFAULT 0,
	onboarded        BOOLEAN NOT NULL DEFAULT FALSE,
	interests        TEXT NOT NULL DEFAULT '',
	risk_profile     TEXT NOT NULL DEFAULT 'Moderate',
	interval_minutes INTEGER NOT NULL DEFAULT 15,
	last_scanned_at  TIMESTAMPTZ,
	last_seen        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	command_count    BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS watchlist (
	user_id  BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
	ticker   TEXT NOT NULL,
	added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, ticker)
);
CREATE INDEX IF NOT EXISTS idx_watchlist_ticker ON watchlist(ticker);

CREATE TABLE IF NOT EXISTS sent_notifications (
	content_hash      TEXT PRIMARY KEY,
	ticker            TEXT NOT NULL,
	notification_type TEXT NOT NULL,
	title             TEXT NOT NULL DEFAULT '',
	sent_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sent_notifications_sent_at ON sent_notifications(sent_at);

CREATE TABLE IF NOT EXISTS command_usage (
	id         UUID PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	chat_id    BIGINT NOT NULL,
	command    TEXT NOT NULL,
	args       TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	latency_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_notes (
	id         UUID PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
	text       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_notes_user_created ON user_notes(user_id, created_at DESC);
`

const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_command_usage_created ON command_usage(created_at);
CREATE INDEX IF NOT EXISTS idx_command_usage_user ON command_usage(user_id, created_at DESC);
`

// Migrate applies pending schema versions, each in its own transaction
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		if err := runMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}
	return nil
}

func runMigration(ctx context.Context, db *sqlx.DB, m migration) error {
	var applied bool
	if err := db.GetContext(ctx, &applied,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version); err != nil {
		return err
	}
	if applied {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}
