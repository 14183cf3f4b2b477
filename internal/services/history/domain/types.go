// Package domain holds the per-user per-day call history (the calendar store)
package domain

import (
	"time"
)

// DayRow is one (user, Istanbul day) history row
type DayRow struct {
	Day           time.Time
	CallsMade     int
	TargetForDay  int
	TargetReached bool
}

// ApplyInput counts calls into one (user, day) row
type ApplyInput struct {
	UserID string
	Day    time.Time

	// CallIDs are the call records being counted; ids already counted by an
	// earlier Apply are skipped
	CallIDs []string

	// Target seeds target_for_day when the row is created
	Target int

	// RefreshTarget also overwrites target_for_day with Target on an existing
	// row; only valid for the current day
	RefreshTarget bool
}

// ApplyResult reports how many of the input calls were new
type ApplyResult struct {
	Added int
	Row   DayRow
}
