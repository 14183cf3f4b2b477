// Package service contains the daily record workflows: lazy creation,
// appending calls and replaying a day from the call log
package service

import (
	"context"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	"callcrm/internal/services/ledger/domain"
	"callcrm/internal/services/ledger/repo"
	userdom "callcrm/internal/services/users/domain"

	"github.com/google/uuid"
)

// Service defines the ledger service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the ledger service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	users  userdom.Reader

	// NewID mints record ids
	NewID func() string
}

// New constructs a ledger service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], users userdom.Reader) *Svc {
	if db == nil {
		panic("ledger.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ledger.Service requires a non nil Repo binder")
	}
	if users == nil {
		panic("ledger.Service requires a users reader")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, users: users, NewID: uuid.NewString}
}

var errWeekend = perr.InvalidArgf("daily records exist only for workdays")

// Ensure creates an empty record for (user, day). A record that already
// exists, including one created concurrently, is returned with Created false.
func (s *Svc) Ensure(ctx context.Context, userID string, day time.Time, target int) (domain.EnsureResult, error) {
	day = calday.Floor(day)
	if !calday.IsWorkday(day) {
		return domain.EnsureResult{}, errWeekend
	}
	rec, err := s.Repo.Create(ctx, s.NewID(), userID, day, target)
	if err == nil {
		return domain.EnsureResult{Record: rec, Created: true}, nil
	}
	if !perr.IsDuplicateKey(err) {
		return domain.EnsureResult{}, err
	}
	rec, err = s.Repo.Find(ctx, userID, day)
	if err != nil {
		return domain.EnsureResult{}, err
	}
	return domain.EnsureResult{Record: rec}, nil
}

// Append adds a call to the user's record for in.Day, creating the record
// with in.Target when none exists yet
func (s *Svc) Append(ctx context.Context, in domain.AppendInput) (bool, error) {
	if in.Entry.CallRecordID == "" || in.Entry.Outcome == "" {
		return false, perr.InvalidArgf("daily record entries need a call id and an outcome")
	}
	day := calday.Floor(in.Day)
	rec, err := s.Repo.Find(ctx, in.UserID, day)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		var res domain.EnsureResult
		res, err = s.Ensure(ctx, in.UserID, day, in.Target)
		rec = res.Record
	}
	if err != nil {
		return false, err
	}

	var added bool
	err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		// the count below must see every entry committed before ours
		if e := r.Lock(ctx, rec.ID); e != nil {
			return e
		}
		var e error
		if added, e = r.AddEntry(ctx, rec.ID, in.Entry); e != nil || !added {
			return e
		}
		_, e = r.Recount(ctx, rec.ID)
		return e
	})
	return added, err
}

// Get returns the user's record for day with its calls
func (s *Svc) Get(ctx context.Context, userID string, day time.Time) (domain.Record, error) {
	rec, err := s.Repo.Find(ctx, userID, calday.Floor(day))
	if err != nil {
		return domain.Record{}, err
	}
	if rec.Calls, err = s.Repo.Entries(ctx, rec.ID); err != nil {
		return domain.Record{}, err
	}
	if rec.Calls == nil {
		rec.Calls = []domain.Entry{}
	}
	return rec, nil
}

// Backfill replays every resulted call of a workday into the records.
// Calls already on a record are skipped, so a replay is safe to repeat.
// A call that cannot be replayed is logged and the replay goes on.
func (s *Svc) Backfill(ctx context.Context, day time.Time) (domain.BackfillResult, error) {
	day = calday.Floor(day)
	res := domain.BackfillResult{Date: calday.Key(day)}
	if !calday.IsWorkday(day) {
		res.Skipped = true
		return res, nil
	}

	calls, err := s.Repo.ResultedBetween(ctx, day, calday.AddDays(day, 1))
	if err != nil {
		return res, err
	}
	res.Calls = len(calls)

	log := logger.C(ctx).With().Str("mod", "ledger").Str("day", res.Date).Logger()
	targets := map[string]int{}
	for _, c := range calls {
		target, ok := targets[c.UserID]
		if !ok {
			u, err := s.users.Get(ctx, c.UserID)
			if err != nil {
				log.Warn().Err(err).Str("call_id", c.ID).Str("user_id", c.UserID).Msg("ledger: backfill user lookup failed")
				continue
			}
			target = u.TargetOr(userdom.FallbackTarget)
			targets[c.UserID] = target
		}
		added, err := s.Append(ctx, domain.AppendInput{
			UserID: c.UserID,
			Day:    day,
			Target: target,
			Entry:  domain.Entry{CallRecordID: c.ID, CompanyID: c.CompanyID, Outcome: c.Outcome, CallTime: c.CallDate},
		})
		if err != nil {
			log.Warn().Err(err).Str("call_id", c.ID).Str("user_id", c.UserID).Msg("ledger: backfill append failed")
			continue
		}
		if added {
			res.Appended++
		}
	}
	log.Info().Int("calls", res.Calls).Int("appended", res.Appended).Msg("ledger: backfill done")
	return res, nil
}
