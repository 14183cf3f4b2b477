// Package domain holds the user types shared by the call accounting modules
package domain

import (
	"time"

	"callcrm/internal/core/calday"
)

// FallbackTarget is the daily quota used when a user has none configured
const FallbackTarget = 20

// LevelAdmin may read the overview and change quotas
const LevelAdmin = "admin"

// User is the subset of the account the accounting core reads and mutates
type User struct {
	ID       string
	UserName string
	Email    string
	Level    string

	// Target is the configured quota; nil when never set
	Target *int

	Points      int
	TodaysCalls int

	// LastCallAt is zero when the user never logged a resulted call
	LastCallAt time.Time

	IsActive  bool
	CreatedAt time.Time
}

// TargetOr returns the configured quota or def
func (u User) TargetOr(def int) int {
	if u.Target != nil {
		return *u.Target
	}
	return def
}

// IsAdmin reports whether the user may run admin operations
func (u User) IsAdmin() bool { return u.Level == LevelAdmin }

// CallsOn returns TodaysCalls as seen on day: a counter whose last call was
// on another Istanbul day is stale and reads as zero
func (u User) CallsOn(day time.Time) int {
	if !calday.SameDay(u.LastCallAt, day) {
		return 0
	}
	return u.TodaysCalls
}
