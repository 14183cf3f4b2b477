// Package schedule runs jobs at an Istanbul wall clock time
package schedule

import (
	"context"
	"time"

	"callcrm/internal/core/calday"
)

// Timer starts a one-shot timer; stop releases it
type Timer func(d time.Duration) (c <-chan time.Time, stop func() bool)

// StdTimer is a Timer backed by time.NewTimer
func StdTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Daily calls fn at every hour:min Istanbul time until ctx ends. fn gets the
// scheduled instant. A nil timer uses StdTimer.
func Daily(ctx context.Context, clock calday.Clock, hour, min int, timer Timer, fn func(ctx context.Context, at time.Time)) error {
	if timer == nil {
		timer = StdTimer
	}
	for {
		now := clock.Now()
		next := calday.NextAt(now, hour, min)
		c, stop := timer(next.Sub(now))
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case <-c:
		}
		fn(ctx, next)
	}
}
