package domain

import (
	"context"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Log(ctx context.Context, in LogInput) (LogResult, error)
	Today(ctx context.Context, userID string) (TodayList, error)
}
