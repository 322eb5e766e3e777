package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"marketpulse/internal/adapters/postgres"
)

// PostgresTestHelper manages a transactional connection for integration tests.
type PostgresTestHelper struct {
	client     *postgres.Client
	tx         *sqlx.Tx
	rolledBack bool
}

// NewTestPostgres connects to the TEST_POSTGRES_* database, runs the setup
// functions on the raw handle (migrations), then opens a transaction that is
// rolled back when the test ends.
func NewTestPostgres(t *testing.T, setup ...func(context.Context, *sqlx.DB) error) *PostgresTestHelper {
	t.Helper()

	cfg := LoadDatabaseConfigsFromEnv(t,
		"TEST_POSTGRES_HOST", "TEST_POSTGRES_USER", "TEST_POSTGRES_PASSWORD", "TEST_POSTGRES_DB",
	).Postgres

	client, err := postgres.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create postgres client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx := context.Background()
	for _, fn := range setup {
		if err := fn(ctx, client.DB()); err != nil {
			t.Fatalf("postgres setup failed: %v", err)
		}
	}

	tx, err := client.DB().BeginTxx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to start transaction: %v", err)
	}

	helper := &PostgresTestHelper{client: client, tx: tx}
	t.Cleanup(helper.Rollback)
	return helper
}

// Tx returns the active transaction for the test.
func (h *PostgresTestHelper) Tx() *sqlx.Tx {
	return h.tx
}

// DB returns the underlying database handle.
func (h *PostgresTestHelper) DB() *sqlx.DB {
	return h.client.DB()
}

// Rollback rolls back the transaction once.
func (h *PostgresTestHelper) Rollback() {
	if h.rolledBack {
		return
	}
	_ = h.tx.Rollback()
	h.rolledBack = true
}
