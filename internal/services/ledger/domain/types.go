// Package domain holds the per-user workday record with its call list
package domain

import (
	"time"
)

// Entry is one call inside a daily record
type Entry struct {
	CallRecordID string    `json:"callRecordId"`
	CompanyID    string    `json:"companyId"`
	CompanyName  string    `json:"companyName,omitempty"`
	Outcome      string    `json:"outcome"`
	CallTime     time.Time `json:"callTime"`
}

// Record is one (user, workday) record. DailyTarget is the quota when the
// record was created and is never refreshed.
type Record struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Day           time.Time `json:"-"`
	Date          string    `json:"date"`
	DailyTarget   int       `json:"dailyTarget"`
	CallCount     int       `json:"callCount"`
	TargetReached bool      `json:"targetReached"`
	Calls         []Entry   `json:"calls"`
}

// AppendInput adds one call to the user's record for Day
type AppendInput struct {
	UserID string
	Day    time.Time
	Target int
	Entry  Entry
}

// EnsureResult tells whether Ensure created the record
type EnsureResult struct {
	Record  Record
	Created bool
}

// BackfillInput replays a day's calls into the records
type BackfillInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02" example:"2025-06-10"`
}

// BackfillResult reports a replay
type BackfillResult struct {
	Date     string `json:"date"`
	Calls    int    `json:"calls"`
	Appended int    `json:"appended"`
	Skipped  bool   `json:"skipped"`
}
