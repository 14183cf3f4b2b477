package domain

import (
	"context"
	"time"
)

// Appender adds calls to daily records. Appending a call already on a
// record is a no-op.
type Appender interface {
	Append(ctx context.Context, in AppendInput) (appended bool, err error)
}

// Ensurer creates empty daily records
type Ensurer interface {
	Ensure(ctx context.Context, userID string, day time.Time, target int) (EnsureResult, error)
}

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Appender
	Ensurer
	Get(ctx context.Context, userID string, day time.Time) (Record, error)
	Backfill(ctx context.Context, day time.Time) (BackfillResult, error)
}
