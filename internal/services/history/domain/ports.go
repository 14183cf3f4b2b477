package domain

import (
	"context"
	"time"
)

// Applier counts calls into the history exactly once per call
type Applier interface {
	Apply(ctx context.Context, in ApplyInput) (ApplyResult, error)
}

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Applier
	EnsureDay(ctx context.Context, userID string, day time.Time) (CalendarDay, error)
	Calendar(ctx context.Context, q CalendarQuery) (Calendar, error)
	Stats(ctx context.Context, userID string) (Stats, error)
}
