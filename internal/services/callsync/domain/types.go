// Package domain holds the reconciliation job state and run reports
package domain

import (
	"context"
	"time"
)

// State of the reconciliation job
type State int32

// Job states; a job is Running for the length of one RunOnce
const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Call is a resulted call read back from the call log
type Call struct {
	ID        string
	UserID    string
	CompanyID string
	Outcome   string
	CallDate  time.Time
}

// RunResult reports one reconciliation run
type RunResult struct {
	// Skipped is set when another run was in progress; nothing else is filled
	Skipped bool `json:"skipped"`

	StartedAt time.Time `json:"startedAt"`
	Since     time.Time `json:"since"`
	Calls     int       `json:"calls"`
	Groups    int       `json:"groups"`

	// Added counts calls that were missing from the history
	Added int `json:"added"`

	// LedgerAdded counts calls replayed into the daily records
	LedgerAdded int `json:"ledgerAdded"`
}

// Status is the job's externally visible state
type Status struct {
	State    string    `json:"state"`
	LastSync time.Time `json:"lastSync"`
}

// RunnerPort is consumed by the API, the ops tool and the worker process
type RunnerPort interface {
	RunOnce(ctx context.Context) (RunResult, error)
	Run(ctx context.Context) error
	Status() Status
}
