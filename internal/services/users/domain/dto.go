package domain

import "time"

// Profile is the session user's own view
type Profile struct {
	ID           string     `json:"id" example:"1f0c..."`
	UserName     string     `json:"userName" example:"Melike"`
	Email        string     `json:"email"`
	Level        string     `json:"level" example:"user"`
	Target       int        `json:"targetCallNumber" example:"20"`
	Points       int        `json:"points" example:"412"`
	TodaysCalls  int        `json:"todaysCalls" example:"7"`
	LastCallDate *time.Time `json:"lastCallDate,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// OverviewRow is one user in the admin overview for today
type OverviewRow struct {
	ID           string     `json:"id"`
	UserName     string     `json:"userName"`
	Level        string     `json:"level"`
	TodaysCalls  int        `json:"todaysCalls"`
	Points       int        `json:"points"`
	Target       int        `json:"target"`
	IsActive     bool       `json:"isActive"`
	LastCallDate *time.Time `json:"lastCallDate,omitempty"`
}

// TargetInput changes a user's daily quota
type TargetInput struct {
	Target int `json:"target" validate:"min=0,max=1000" example:"25"`
}
