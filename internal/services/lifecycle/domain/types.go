// Package domain holds the daily record lifecycle reports
package domain

import (
	"context"
	"time"
)

// EnsureReport summarises one ensure pass over the active users
type EnsureReport struct {
	Date     string `json:"date"`
	Skipped  bool   `json:"skipped"`
	Users    int    `json:"users"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Failed   int    `json:"failed"`
}

// RunnerPort is consumed by the api process and the ops tool
type RunnerPort interface {
	EnsureRecordsForDate(ctx context.Context, day time.Time) (EnsureReport, error)
	Run(ctx context.Context) error
}
