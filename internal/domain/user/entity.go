package user

import (
	"strings"
	"time"
)

// DefaultIntervalMinutes is the alert interval for users that never ran /interval
const DefaultIntervalMinutes = 15

// Interval bounds accepted by /interval
const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 1440
)

// User is the per-Telegram-user state record
type User struct {
	TelegramID      int64          `db:"telegram_id"`
	Username        string         `db:"username"`
	Step            OnboardingStep `db:"-"`
	Interests       string         `db:"interests"`
	Risk            RiskProfile    `db:"risk_profile"`
	IntervalMinutes int            `db:"interval_minutes"`
	LastScannedAt   *time.Time     `db:"last_scanned_at"` // last monitor sweep for this user
	LastSeen        time.Time      `db:"last_seen"`
	CommandCount    int64          `db:"command_count"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// New returns a fresh user record with defaults applied
func New(telegramID int64, username string, now time.Time) *User {
	return &User{
		TelegramID:      telegramID,
		Username:        username,
		Step:            StepNotStarted,
		Risk:            RiskModerate,
		IntervalMinutes: DefaultIntervalMinutes,
		LastSeen:        now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// RiskOrDefault never returns an empty profile
func (u *User) RiskOrDefault() RiskProfile {
	if u == nil {
		return RiskModerate
	}
	return u.Risk.OrDefault()
}

// Interval returns the alert interval as a duration, falling back to the default
func (u *User) Interval() time.Duration {
	minutes := u.IntervalMinutes
	if minutes < MinIntervalMinutes || minutes > MaxIntervalMinutes {
		minutes = DefaultIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// DueForScan reports whether the monitor should sweep this user's watchlist at now
func (u *User) DueForScan(now time.Time) bool {
	if u.LastScannedAt == nil {
		return true
	}
	return !now.Before(u.LastScannedAt.Add(u.Interval()))
}

// RiskProfile is the user's declared appetite for risk
type RiskProfile string

const (
	RiskAggressive   RiskProfile = "Aggressive"
	RiskModerate     RiskProfile = "Moderate"
	RiskConservative RiskProfile = "Conservative"
)

// RiskProfiles lists the profiles in menu order; menu index i+1 selects RiskProfiles[i]
var RiskProfiles = []RiskProfile{RiskAggressive, RiskModerate, RiskConservative}

// Valid reports whether r is one of the known profiles
func (r RiskProfile) Valid() bool {
	switch r {
	case RiskAggressive, RiskModerate, RiskConservative:
		return true
	default:
		return false
	}
}

// OrDefault maps unset or unknown values to Moderate
func (r RiskProfile) OrDefault() RiskProfile {
	if r.Valid() {
		return r
	}
	return RiskModerate
}

// ParseRiskProfile accepts a menu number ("1".."3"), a profile name in any case,
// or a "risk:<name>" callback payload.
func ParseRiskProfile(input string) (RiskProfile, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimPrefix(s, "risk:")
	switch s {
	case "1", "aggressive":
		return RiskAggressive, true
	case "2", "moderate":
		return RiskModerate, true
	case "3", "conservative":
		return RiskConservative, true
	default:
		return "", false
	}
}
