// Package service logs calls and runs the per-call side effects: the company
// counter, the user counter and both daily stores
package service

import (
	"context"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	"callcrm/internal/platform/net/http/bind"
	"callcrm/internal/services/calls/domain"
	"callcrm/internal/services/calls/repo"
	histdom "callcrm/internal/services/history/domain"
	ledgerdom "callcrm/internal/services/ledger/domain"
	userdom "callcrm/internal/services/users/domain"

	"github.com/google/uuid"
)

// Pipeline step names, as logged and reported
const (
	StepCompany = "company"
	StepUser    = "user"
	StepHistory = "history"
	StepLedger  = "ledger"
)

// Users is what the pipeline needs from the users module
type Users interface {
	userdom.Reader
	userdom.Counter
}

// Deps are the downstream stores fed by each resulted call
type Deps struct {
	Users   Users
	History histdom.Applier
	Ledger  ledgerdom.Appender
}

// Service defines the calls service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the calls service
type Svc struct {
	Repo  repo.Repo
	deps  Deps
	clock calday.Clock

	// NewID mints call record ids
	NewID func() string
}

// New constructs a calls service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], deps Deps, clock calday.Clock) *Svc {
	if db == nil {
		panic("calls.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("calls.Service requires a non nil Repo binder")
	}
	if deps.Users == nil || deps.History == nil || deps.Ledger == nil {
		panic("calls.Service requires users, history and ledger ports")
	}
	if clock == nil {
		clock = calday.SystemClock{}
	}
	return &Svc{Repo: binder.Bind(db), deps: deps, clock: clock, NewID: uuid.NewString}
}

// Log stores a call and then applies its side effects in order. Input and
// references are checked before anything is written. Once the record is
// stored, a failing side effect is logged and reported in Steps but never
// fails the call.
func (s *Svc) Log(ctx context.Context, in domain.LogInput) (domain.LogResult, error) {
	// every step sees the same instant
	asOf := calday.Now(s.clock)

	call, user, err := s.prepare(ctx, in, asOf)
	if err != nil {
		return domain.LogResult{}, err
	}
	call, err = s.Repo.Insert(ctx, call)
	if err != nil {
		return domain.LogResult{}, err
	}

	out := domain.LogResult{
		ID:        call.ID,
		CompanyID: call.CompanyID,
		UserID:    call.UserID,
		CallDate:  call.CallDate,
		Outcome:   string(call.Outcome),
		Notes:     call.Notes,
	}
	s.sideEffects(ctx, call, user, asOf, &out)
	return out, nil
}

// prepare validates in and returns the call to store along with its user
func (s *Svc) prepare(ctx context.Context, in domain.LogInput, asOf time.Time) (domain.Call, userdom.User, error) {
	if err := bind.Struct(in); err != nil {
		return domain.Call{}, userdom.User{}, err
	}
	if in.UserID == "" {
		return domain.Call{}, userdom.User{}, perr.WithField(perr.Validationf("userId is required"), "userId")
	}
	outcome, err := domain.ParseOutcome(in.Outcome)
	if err != nil {
		return domain.Call{}, userdom.User{}, err
	}

	ok, err := s.Repo.CompanyExists(ctx, in.CompanyID)
	if err != nil {
		return domain.Call{}, userdom.User{}, err
	}
	if !ok {
		return domain.Call{}, userdom.User{}, perr.WithField(perr.Validationf("company %s does not exist", in.CompanyID), "companyId")
	}
	u, err := s.deps.Users.Get(ctx, in.UserID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Call{}, userdom.User{}, perr.WithField(perr.Validationf("user %s does not exist", in.UserID), "userId")
		}
		return domain.Call{}, userdom.User{}, err
	}

	when := asOf
	if in.When != nil && !in.When.IsZero() {
		when = *in.When
	}
	return domain.Call{
		ID:        s.NewID(),
		CompanyID: in.CompanyID,
		UserID:    in.UserID,
		CallDate:  when,
		Outcome:   outcome,
		Notes:     in.Notes,
	}, u, nil
}

func (s *Svc) sideEffects(ctx context.Context, call domain.Call, user userdom.User, asOf time.Time, out *domain.LogResult) {
	log := logger.C(ctx)
	step := func(name string, err error) bool {
		r := domain.StepResult{Step: name, OK: err == nil}
		if err != nil {
			r.Err = err.Error()
			log.Warn().Err(err).
				Str("call_id", call.ID).
				Str("user_id", call.UserID).
				Str("step", name).
				Msg("calls: side effect failed")
		}
		out.Steps = append(out.Steps, r)
		return err == nil
	}

	spectro := ""
	if call.Outcome == domain.OutcomeNoNeed {
		spectro = domain.NoNeedSpectro
	}
	step(StepCompany, s.Repo.TouchCompany(ctx, call.CompanyID, call.CallDate, spectro))

	if !call.HasOutcome() {
		return
	}

	u, err := s.deps.Users.RecordOutcome(ctx, call.UserID, asOf)
	if step(StepUser, err) {
		out.TodaysCalls, out.Points = u.TodaysCalls, u.Points
		user = u
	}
	target := user.TargetOr(userdom.FallbackTarget)

	_, err = s.deps.History.Apply(ctx, histdom.ApplyInput{
		UserID:  call.UserID,
		Day:     asOf,
		CallIDs: []string{call.ID},
		Target:  target,
	})
	step(StepHistory, err)

	if !calday.IsWorkday(asOf) {
		return
	}
	_, err = s.deps.Ledger.Append(ctx, ledgerdom.AppendInput{
		UserID: call.UserID,
		Day:    asOf,
		Target: target,
		Entry: ledgerdom.Entry{
			CallRecordID: call.ID,
			CompanyID:    call.CompanyID,
			Outcome:      string(call.Outcome),
			CallTime:     call.CallDate,
		},
	})
	step(StepLedger, err)
}

// Today lists the user's calls of the current Istanbul day, newest first
func (s *Svc) Today(ctx context.Context, userID string) (domain.TodayList, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.TodayList{}, perr.WithField(perr.InvalidArgf("user id must be a uuid"), "user_id")
	}
	from := calday.Floor(calday.Now(s.clock))
	calls, err := s.Repo.Between(ctx, userID, from, calday.AddDays(from, 1))
	if err != nil {
		return domain.TodayList{}, err
	}
	if calls == nil {
		calls = []domain.TodayCall{}
	}
	return domain.TodayList{Count: len(calls), Calls: calls}, nil
}
