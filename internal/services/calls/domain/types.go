package domain

import "time"

// Call is an immutable call record
type Call struct {
	ID        string
	CompanyID string
	UserID    string
	CallDate  time.Time
	Outcome   Outcome
	Notes     string
	CreatedAt time.Time
}

// HasOutcome reports whether the call counts toward points and aggregates
func (c Call) HasOutcome() bool { return c.Outcome != "" }

// LogInput is the call logging request
type LogInput struct {
	CompanyID string `json:"companyId" validate:"required,uuid" example:"6f1c..."`
	// UserID defaults to the session user; only admins may name another user
	UserID  string     `json:"userId,omitempty" validate:"omitempty,uuid"`
	Outcome string     `json:"outcome,omitempty" validate:"omitempty,outcome" example:"Potansiyel"`
	Notes   string     `json:"notes,omitempty" validate:"max=500"`
	When    *time.Time `json:"callDate,omitempty"`
}

// StepResult records one pipeline side effect
type StepResult struct {
	Step string `json:"step"`
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}

// LogResult is returned once the call record is stored. Steps lists the side
// effects and whether each applied; a failed step never fails the call.
type LogResult struct {
	ID          string       `json:"id"`
	CompanyID   string       `json:"companyId"`
	UserID      string       `json:"userId"`
	CallDate    time.Time    `json:"callDate"`
	Outcome     string       `json:"outcome,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	TodaysCalls int          `json:"todaysCalls,omitempty"`
	Points      int          `json:"points,omitempty"`
	Steps       []StepResult `json:"steps"`
}

// TodayCall is a call of today with its company fields
type TodayCall struct {
	ID          string    `json:"id"`
	CallDate    time.Time `json:"callDate"`
	Outcome     string    `json:"outcome,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CompanyID   string    `json:"companyId"`
	CompanyName string    `json:"companyName"`
	Person      string    `json:"person"`
	Phone       string    `json:"phone"`
	City        string    `json:"city"`
}

// TodayList is today's calls, newest first
type TodayList struct {
	Count int         `json:"count"`
	Calls []TodayCall `json:"calls"`
}
