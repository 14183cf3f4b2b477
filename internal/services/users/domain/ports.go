package domain

import (
	"context"
	"time"
)

// Reader is consumed by modules that need account facts
type Reader interface {
	Get(ctx context.Context, id string) (User, error)
	Active(ctx context.Context) ([]User, error)
}

// Counter applies the per-call counter update. asOf is the single instant
// the calling pipeline computed for this call.
type Counter interface {
	RecordOutcome(ctx context.Context, id string, asOf time.Time) (User, error)
}

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Reader
	Counter
	Profile(ctx context.Context, id string) (Profile, error)
	Overview(ctx context.Context) ([]OverviewRow, error)
	SetTarget(ctx context.Context, id string, target int) error
}
