package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"callcrm/internal/core/calday"
	kit "callcrm/internal/platform/testkit"
)

func TestDailyFiresAtWallClock(t *testing.T) {
	clock := kit.NewClock(calday.Date(2025, time.June, 10).Add(18 * time.Hour))

	fire := make(chan time.Time)
	waits := make(chan time.Duration, 4)
	timer := func(d time.Duration) (<-chan time.Time, func() bool) {
		waits <- d
		return fire, func() bool { return true }
	}

	got := make(chan time.Time, 4)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Daily(ctx, clock, 19, 0, timer, func(_ context.Context, at time.Time) { got <- at })
	}()

	if d := <-waits; d != time.Hour {
		t.Fatalf("first wait = %v", d)
	}
	clock.Set(calday.Date(2025, time.June, 10).Add(19 * time.Hour))
	fire <- clock.Now()
	if at := <-got; !at.Equal(calday.Date(2025, time.June, 10).Add(19 * time.Hour)) {
		t.Fatalf("fired at %v", at)
	}
	if d := <-waits; d != 24*time.Hour {
		t.Fatalf("second wait = %v", d)
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Daily = %v", err)
	}
}
