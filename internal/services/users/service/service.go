// Package service contains user account workflows used by call accounting
package service

import (
	"context"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	"callcrm/internal/services/users/domain"
	"callcrm/internal/services/users/repo"
)

// Service defines the users service contract
type Service interface {
	domain.ServicePort
}

// Config tunes the users service
type Config struct {
	// DefaultTarget applies to users without a configured quota
	DefaultTarget int
}

// Svc implements the users service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	clock  calday.Clock
	cfg    Config
}

// New constructs a users service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], clock calday.Clock, cfg Config) *Svc {
	if db == nil {
		panic("users.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("users.Service requires a non nil Repo binder")
	}
	if clock == nil {
		clock = calday.SystemClock{}
	}
	if cfg.DefaultTarget <= 0 {
		cfg.DefaultTarget = domain.FallbackTarget
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, clock: clock, cfg: cfg}
}

// resolve fills an unset quota with the configured default
func (s *Svc) resolve(u domain.User) domain.User {
	if u.Target == nil {
		t := s.cfg.DefaultTarget
		u.Target = &t
	}
	return u
}

// Get loads a user; Target is always set on the result
func (s *Svc) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return s.resolve(u), nil
}

// Active lists users eligible for daily records
func (s *Svc) Active(ctx context.Context) ([]domain.User, error) {
	us, err := s.Repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range us {
		us[i] = s.resolve(us[i])
	}
	return us, nil
}

// RecordOutcome loads the user, then atomically adds one point and one call
// to today's counter. The counter restarts at 1 when the previous call was on
// an earlier Istanbul day than asOf. The returned user carries the counters
// after the update; on a failed update it is the user as loaded.
func (s *Svc) RecordOutcome(ctx context.Context, id string, asOf time.Time) (domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	newDay := !calday.SameDay(asOf, u.LastCallAt)

	var points, todays int
	if err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		var e error
		points, todays, e = s.binder.Bind(q).Bump(ctx, id, asOf, calday.Floor(asOf))
		return e
	}); err != nil {
		return u, err
	}

	logger.C(ctx).Debug().
		Str("user_id", id).
		Bool("new_day", newDay).
		Int("todays_calls", todays).
		Msg("users: counters bumped")

	u.Points, u.TodaysCalls, u.LastCallAt = points, todays, asOf
	return u, nil
}

// Profile returns the user's own view, first zeroing a counter left over
// from an earlier day
func (s *Svc) Profile(ctx context.Context, id string) (domain.Profile, error) {
	now := calday.Now(s.clock)
	reset, err := s.Repo.ResetStale(ctx, id, calday.Floor(now))
	if err != nil {
		return domain.Profile{}, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if reset {
		logger.C(ctx).Info().Str("user_id", id).Msg("users: stale daily counter reset")
	}
	return domain.Profile{
		ID:           u.ID,
		UserName:     u.UserName,
		Email:        u.Email,
		Level:        u.Level,
		Target:       *u.Target,
		Points:       u.Points,
		TodaysCalls:  u.CallsOn(now),
		LastCallDate: optTime(u.LastCallAt),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}, nil
}

// Overview lists every user with today's counters
func (s *Svc) Overview(ctx context.Context) ([]domain.OverviewRow, error) {
	now := calday.Now(s.clock)
	us, err := s.Repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OverviewRow, 0, len(us))
	for _, u := range us {
		u = s.resolve(u)
		out = append(out, domain.OverviewRow{
			ID:           u.ID,
			UserName:     u.UserName,
			Level:        u.Level,
			TodaysCalls:  u.CallsOn(now),
			Points:       u.Points,
			Target:       *u.Target,
			IsActive:     u.IsActive,
			LastCallDate: optTime(u.LastCallAt),
		})
	}
	return out, nil
}

// SetTarget changes the daily quota. Existing history keeps its snapshot.
func (s *Svc) SetTarget(ctx context.Context, id string, target int) error {
	if target < 0 {
		return perr.WithField(perr.InvalidArgf("target must not be negative"), "target")
	}
	return s.Repo.SetTarget(ctx, id, target)
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
