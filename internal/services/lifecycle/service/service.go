// Package service keeps one daily record per active user per workday
package service

import (
	"context"
	"sync"
	"time"

	"callcrm/internal/core/calday"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	"callcrm/internal/platform/schedule"
	ledgerdom "callcrm/internal/services/ledger/domain"
	"callcrm/internal/services/lifecycle/domain"
	userdom "callcrm/internal/services/users/domain"

	"golang.org/x/sync/errgroup"
)

// Config tunes the lifecycle manager
type Config struct {
	// Workers bounds concurrent record creation
	Workers int
}

// Svc creates daily records at startup and at Istanbul midnight
type Svc struct {
	users  userdom.Reader
	ledger ledgerdom.Ensurer
	clock  calday.Clock
	cfg    Config

	// Timer is swapped in tests to fire midnight without waiting
	Timer schedule.Timer
}

// New constructs the lifecycle manager
func New(users userdom.Reader, ledger ledgerdom.Ensurer, clock calday.Clock, cfg Config) *Svc {
	if users == nil || ledger == nil {
		panic("lifecycle.Service requires users and ledger ports")
	}
	if clock == nil {
		clock = calday.SystemClock{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Svc{users: users, ledger: ledger, clock: clock, cfg: cfg, Timer: schedule.StdTimer}
}

// EnsureRecordsForDate creates the missing records of day for every active
// user with the user's current target. Weekends are skipped. A record that
// already exists, or is created concurrently, counts as Existing. Per-user
// failures do not stop the pass; they are counted and reported as one error.
func (s *Svc) EnsureRecordsForDate(ctx context.Context, day time.Time) (domain.EnsureReport, error) {
	log := logger.Named("lifecycle")
	day = calday.Floor(day)
	rep := domain.EnsureReport{Date: calday.Key(day)}
	if !calday.IsWorkday(day) {
		rep.Skipped = true
		log.Info().Str("date", rep.Date).Msg("lifecycle: weekend, no records")
		return rep, nil
	}

	users, err := s.users.Active(ctx)
	if err != nil {
		return rep, err
	}
	rep.Users = len(users)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, u := range users {
		g.Go(func() error {
			res, err := s.ledger.Ensure(gctx, u.ID, day, u.TargetOr(userdom.FallbackTarget))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && res.Created:
				rep.Created++
			case err == nil, perr.IsCode(err, perr.ErrorCodeDuplicateKey):
				rep.Existing++
			default:
				rep.Failed++
				log.Warn().Err(err).Str("user_id", u.ID).Str("date", rep.Date).Msg("lifecycle: record not created")
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Str("date", rep.Date).
		Int("users", rep.Users).
		Int("created", rep.Created).
		Int("existing", rep.Existing).
		Int("failed", rep.Failed).
		Msg("lifecycle: records ensured")

	if rep.Failed > 0 {
		return rep, perr.Unavailablef("%d of %d daily records could not be created for %s", rep.Failed, rep.Users, rep.Date)
	}
	return rep, nil
}

// Run ensures today's records, then repeats at every Istanbul midnight until
// ctx ends
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("lifecycle")
	if _, err := s.EnsureRecordsForDate(ctx, calday.Now(s.clock)); err != nil {
		log.Warn().Err(err).Msg("lifecycle: startup pass incomplete")
	}
	return schedule.Daily(ctx, s.clock, 0, 0, s.Timer, func(ctx context.Context, at time.Time) {
		if _, err := s.EnsureRecordsForDate(ctx, at); err != nil {
			log.Warn().Err(err).Msg("lifecycle: midnight pass incomplete")
		}
	})
}
