// Package service builds the daily call report and hands it to the mailer
package service

import (
	"context"
	"errors"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	"callcrm/internal/platform/logger"
	"callcrm/internal/platform/schedule"
	"callcrm/internal/services/report/domain"
	"callcrm/internal/services/report/guardrails"
	"callcrm/internal/services/report/mailer"
	"callcrm/internal/services/report/repo"
	userdom "callcrm/internal/services/users/domain"
)

// Config tunes the report
type Config struct {
	Recipients []string

	// Hour and Minute of the daily send, Istanbul time
	Hour, Minute int
}

// Svc implements the report sender
type Svc struct {
	Repo  repo.Repo
	users userdom.Reader
	mail  mailer.Mailer
	clock calday.Clock
	cfg   Config

	// Timer is swapped in tests to fire the schedule without waiting
	Timer schedule.Timer

	// Lease, when set, guards scheduled sends so only one replica mails a day
	Lease guardrails.Lease
}

// New constructs a report sender
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], users userdom.Reader, mail mailer.Mailer, clock calday.Clock, cfg Config) *Svc {
	if db == nil {
		panic("report.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("report.Service requires a non nil Repo binder")
	}
	if users == nil || mail == nil {
		panic("report.Service requires users and a mailer")
	}
	if clock == nil {
		clock = calday.SystemClock{}
	}
	return &Svc{Repo: binder.Bind(db), users: users, mail: mail, clock: clock, cfg: cfg, Timer: schedule.StdTimer}
}

// Build renders the report of day without sending it. Every active user gets
// a section; calls of inactive users are left out.
func (s *Svc) Build(ctx context.Context, day time.Time) (domain.Report, error) {
	day = calday.Floor(day)
	users, err := s.users.Active(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	rows, err := s.Repo.CallsBetween(ctx, day, calday.AddDays(day, 1))
	if err != nil {
		return domain.Report{}, err
	}

	byUser := map[string][]domain.Line{}
	for _, r := range rows {
		byUser[r.UserID] = append(byUser[r.UserID], domain.Line{CompanyName: r.CompanyName, Outcome: r.Outcome, CallDate: r.CallDate})
	}
	sections := make([]domain.Section, 0, len(users))
	for _, u := range users {
		sections = append(sections, domain.Section{UserID: u.ID, UserName: u.UserName, Calls: byUser[u.ID]})
	}

	return domain.Report{
		Date:       calday.Key(day),
		Subject:    subject(day),
		Body:       render(day, sections),
		Recipients: s.cfg.Recipients,
		Sections:   sections,
	}, nil
}

// SendDaily builds the report of day and mails it. With no recipients
// configured the report is built and logged but not sent.
func (s *Svc) SendDaily(ctx context.Context, day time.Time) (domain.Report, error) {
	rep, err := s.Build(ctx, day)
	if err != nil {
		return domain.Report{}, err
	}
	if len(rep.Recipients) == 0 {
		logger.C(ctx).Warn().Str("date", rep.Date).Msg("report: no recipients configured")
		return rep, nil
	}
	if err := s.mail.Send(ctx, mailer.Message{To: rep.Recipients, Subject: rep.Subject, Text: rep.Body}); err != nil {
		return rep, err
	}
	rep.Sent = true
	return rep, nil
}

// Run sends the report every day at the configured time until ctx ends
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("report")
	log.Info().Int("hour", s.cfg.Hour).Int("minute", s.cfg.Minute).Msg("report: scheduled")
	return schedule.Daily(ctx, s.clock, s.cfg.Hour, s.cfg.Minute, s.Timer, func(ctx context.Context, at time.Time) {
		send := func(ctx context.Context) error {
			_, err := s.SendDaily(ctx, at)
			return err
		}
		var err error
		if s.Lease != nil {
			err = s.Lease(ctx, "report:daily:"+calday.Key(at), send)
		} else {
			err = send(ctx)
		}
		switch {
		case errors.Is(err, guardrails.ErrLeaseHeld):
			log.Info().Str("date", calday.Key(at)).Msg("report: already sent by another process")
		case err != nil:
			log.Error().Err(err).Msg("report: daily send failed")
		}
	})
}
