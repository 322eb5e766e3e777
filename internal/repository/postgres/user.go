package postgres

import (
	"context"
	"database/sql"
	"time"

	"marketpulse/internal/domain/user"
	"marketpulse/pkg/errors"
)

// Compile-time check that we implement the interface
var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository using sqlx
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// userRow mirrors the users table; the onboarding step is split across two columns
type userRow struct {
	TelegramID      int64      `db:"telegram_id"`
	Username        string     `db:"username"`
	OnboardingStep  int        `db:"onboarding_step"`
	Onboarded       bool       `db:"onboarded"`
	Interests       string     `db:"interests"`
	RiskProfile     string     `db:"risk_profile"`
	IntervalMinutes int        `db:"interval_minutes"`
	LastScannedAt   *time.Time `db:"last_scanned_at"`
	LastSeen        time.Time  `db:"last_seen"`
	CommandCount    int64      `db:"command_count"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r userRow) toDomain() *user.User {
	return &user.User{
		TelegramID:      r.TelegramID,
		Username:        r.Username,
		Step:            user.StepFromStored(r.OnboardingStep, r.Onboarded),
		Interests:       r.Interests,
		Risk:            user.RiskProfile(r.RiskProfile).OrDefault(),
		IntervalMinutes: r.IntervalMinutes,
		LastScannedAt:   r.LastScannedAt,
		LastSeen:        r.LastSeen,
		CommandCount:    r.CommandCount,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

const userColumns = `telegram_id, username, onboarding_step, onboarded, interests, risk_profile,
	interval_minutes, last_scanned_at, last_seen, command_count, created_at, updated_at`

// Upsert creates the user on first contact or refreshes last_seen
func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, username string, countCommand bool) (*user.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, interval_minutes, command_count)
		VALUES ($1, $2, $3, CASE WHEN $4::boolean THEN 1 ELSE 0 END)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE users.username END,
			last_seen = NOW(),
			command_count = users.command_count + EXCLUDED.command_count
		RETURNING ` + userColumns

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, telegramID, username, user.DefaultIntervalMinutes, countCommand); err != nil {
		return nil, errors.Wrap(err, "failed to upsert user")
	}
	return row.toDomain(), nil
}

// GetByTelegramID retrieves a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// UpdateOnboarding stores the step, risk and interests in one statement
func (r *UserRepository) UpdateOnboarding(ctx context.Context, u *user.User) error {
	step, onboarded := u.Step.Stored()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			onboarding_step = $2,
			onboarded = $3,
			risk_profile = $4,
			interests = $5,
			updated_at = NOW()
		WHERE telegram_id = $1`,
		u.TelegramID, step, onboarded, string(u.RiskOrDefault()), u.Interests,
	)
	return requireRow(res, err, "user")
}

// UpdateRisk sets the risk profile
func (r *UserRepository) UpdateRisk(ctx context.Context, telegramID int64, risk user.RiskProfile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET risk_profile = $2, updated_at = NOW() WHERE telegram_id = $1`,
		telegramID, string(risk))
	return requireRow(res, err, "user")
}

// UpdateInterval sets the alert interval in minutes
func (r *UserRepository) UpdateInterval(ctx context.Context, telegramID int64, minutes int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET interval_minutes = $2, updated_at = NOW() WHERE telegram_id = $1`,
		telegramID, minutes)
	return requireRow(res, err, "user")
}

// MarkScanned records the last monitor sweep
func (r *UserRepository) MarkScanned(ctx context.Context, telegramID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_scanned_at = $2 WHERE telegram_id = $1`, telegramID, at)
	return err
}

// ListWithWatchlist returns users with at least one watchlist entry
func (r *UserRepository) ListWithWatchlist(ctx context.Context) ([]*user.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+userColumns+` FROM users u
		WHERE EXISTS (SELECT 1 FROM watchlist w WHERE w.user_id = u.telegram_id)
		ORDER BY telegram_id`)
	if err != nil {
		return nil, err
	}
	out := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// requireRow maps a zero-row update to ErrNotFound
func requireRow(res sql.Result, err error, entity string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "%s not found", entity)
	}
	return nil
}
