package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	kit "callcrm/internal/platform/testkit"
	"callcrm/internal/services/calls/domain"
	"callcrm/internal/services/calls/repo"
	histdom "callcrm/internal/services/history/domain"
	ledgerdom "callcrm/internal/services/ledger/domain"
	userdom "callcrm/internal/services/users/domain"
)

const (
	userID    = "6f9a2c1e-0d4b-4a51-9d7e-3b2a1c0f9e11"
	companyID = "0b8d7c6e-5f4a-4b3c-8d2e-1f0a9b8c7d62"
)

type company struct {
	totalCalls  int
	lastContact time.Time
	spectro     string
}

type fakeRepo struct {
	mu        sync.Mutex
	calls     []domain.Call
	companies map[string]*company
	touchErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{companies: map[string]*company{companyID: {}}}
}

func (f *fakeRepo) CompanyExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.companies[id]
	return ok, nil
}

func (f *fakeRepo) Insert(_ context.Context, c domain.Call) (domain.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.CreatedAt = c.CallDate
	f.calls = append(f.calls, c)
	return c, nil
}

func (f *fakeRepo) TouchCompany(_ context.Context, id string, at time.Time, spectro string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	co := f.companies[id]
	co.totalCalls++
	co.lastContact = at
	if spectro != "" {
		co.spectro = spectro
	}
	return nil
}

func (f *fakeRepo) Between(_ context.Context, uid string, from, to time.Time) ([]domain.TodayCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TodayCall
	for _, c := range f.calls {
		if c.UserID == uid && !c.CallDate.Before(from) && c.CallDate.Before(to) {
			out = append(out, domain.TodayCall{ID: c.ID, CallDate: c.CallDate, Outcome: string(c.Outcome), CompanyID: c.CompanyID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CallDate.After(out[j].CallDate) })
	return out, nil
}

type fakeUsers struct {
	mu  sync.Mutex
	u   map[string]*userdom.User
	err error

	// gone makes RecordOutcome fail as if the user vanished after validation
	gone bool
}

func (f *fakeUsers) Get(_ context.Context, id string) (userdom.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.u[id]
	if !ok {
		return userdom.User{}, perr.NotFoundf("user %s not found", id)
	}
	return *u, nil
}

func (f *fakeUsers) Active(context.Context) ([]userdom.User, error) { return nil, nil }

func (f *fakeUsers) RecordOutcome(_ context.Context, id string, asOf time.Time) (userdom.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gone {
		return userdom.User{}, perr.NotFoundf("user %s not found", id)
	}
	u := f.u[id]
	if f.err != nil {
		return *u, f.err
	}
	if calday.SameDay(asOf, u.LastCallAt) {
		u.TodaysCalls++
	} else {
		u.TodaysCalls = 1
	}
	u.Points++
	u.LastCallAt = asOf
	return *u, nil
}

type dayKey struct {
	user string
	day  string
}

type fakeHistory struct {
	mu     sync.Mutex
	rows   map[dayKey]*histdom.DayRow
	marked map[string]bool
	err    error
}

func (f *fakeHistory) Apply(_ context.Context, in histdom.ApplyInput) (histdom.ApplyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return histdom.ApplyResult{}, f.err
	}
	k := dayKey{in.UserID, calday.Key(in.Day)}
	row, ok := f.rows[k]
	if !ok {
		row = &histdom.DayRow{Day: calday.Floor(in.Day), TargetForDay: in.Target}
		f.rows[k] = row
	}
	n := 0
	for _, id := range in.CallIDs {
		if !f.marked[id] {
			f.marked[id] = true
			n++
		}
	}
	row.CallsMade += n
	row.TargetReached = row.CallsMade >= row.TargetForDay
	return histdom.ApplyResult{Added: n, Row: *row}, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	records map[dayKey]*ledgerdom.Record
}

func (f *fakeLedger) Append(_ context.Context, in ledgerdom.AppendInput) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey{in.UserID, calday.Key(in.Day)}
	rec, ok := f.records[k]
	if !ok {
		rec = &ledgerdom.Record{UserID: in.UserID, Date: k.day, DailyTarget: in.Target}
		f.records[k] = rec
	}
	for _, e := range rec.Calls {
		if e.CallRecordID == in.Entry.CallRecordID {
			return false, nil
		}
	}
	rec.Calls = append(rec.Calls, in.Entry)
	rec.CallCount = len(rec.Calls)
	rec.TargetReached = rec.CallCount >= rec.DailyTarget
	return true, nil
}

type harness struct {
	svc     *Svc
	repo    *fakeRepo
	users   *fakeUsers
	history *fakeHistory
	ledger  *fakeLedger
	clock   *kit.Clock
}

func newHarness(t *testing.T, now time.Time, target int) *harness {
	t.Helper()
	h := &harness{
		repo:    newFakeRepo(),
		users:   &fakeUsers{u: map[string]*userdom.User{userID: {ID: userID, Target: &target, IsActive: true}}},
		history: &fakeHistory{rows: map[dayKey]*histdom.DayRow{}, marked: map[string]bool{}},
		ledger:  &fakeLedger{records: map[dayKey]*ledgerdom.Record{}},
		clock:   kit.NewClock(now),
	}
	bind := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return h.repo })
	h.svc = New(&repokit.FakeTx{}, bind, Deps{Users: h.users, History: h.history, Ledger: h.ledger}, h.clock)
	n := 0
	h.svc.NewID = func() string { n++; return fmt.Sprintf("call-%d", n) }
	return h
}

func (h *harness) log(t *testing.T, outcome string) domain.LogResult {
	t.Helper()
	res, err := h.svc.Log(context.Background(), domain.LogInput{CompanyID: companyID, UserID: userID, Outcome: outcome})
	if err != nil {
		t.Fatalf("Log(%q): %v", outcome, err)
	}
	return res
}

var tuesday = calday.Date(2025, time.June, 10)

func TestNewPanics(t *testing.T) {
	bind := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return newFakeRepo() })
	kit.MustPanic(t, func() { New(nil, bind, Deps{}, nil) })
	kit.MustPanic(t, func() { New(&repokit.FakeTx{}, bind, Deps{}, nil) })
}

func TestThreeCallsReachTarget(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 3)
	for i := 0; i < 3; i++ {
		h.log(t, "Potansiyel")
		h.clock.Advance(10 * time.Minute)
	}

	u, _ := h.users.Get(context.Background(), userID)
	if u.TodaysCalls != 3 || u.Points != 3 {
		t.Fatalf("user = %+v", u)
	}
	row := h.history.rows[dayKey{userID, "2025-06-10"}]
	if row == nil || row.CallsMade != 3 || row.TargetForDay != 3 || !row.TargetReached {
		t.Fatalf("history row = %+v", row)
	}
	rec := h.ledger.records[dayKey{userID, "2025-06-10"}]
	if rec == nil || rec.CallCount != 3 || !rec.TargetReached {
		t.Fatalf("ledger record = %+v", rec)
	}
	if h.repo.companies[companyID].totalCalls != 3 {
		t.Fatalf("company total = %d", h.repo.companies[companyID].totalCalls)
	}
}

func TestCallWithoutOutcomeOnlyTouchesCompany(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 3)
	res := h.log(t, "")

	if len(res.Steps) != 1 || res.Steps[0].Step != StepCompany || !res.Steps[0].OK {
		t.Fatalf("steps = %+v", res.Steps)
	}
	u, _ := h.users.Get(context.Background(), userID)
	if u.Points != 0 || u.TodaysCalls != 0 {
		t.Fatalf("user = %+v", u)
	}
	if len(h.history.rows) != 0 || len(h.ledger.records) != 0 {
		t.Fatalf("aggregates touched: %v %v", h.history.rows, h.ledger.records)
	}
	if co := h.repo.companies[companyID]; co.totalCalls != 1 || !co.lastContact.Equal(tuesday.Add(9*time.Hour)) {
		t.Fatalf("company = %+v", co)
	}
}

func TestDayRolloverResetsCounter(t *testing.T) {
	h := newHarness(t, tuesday.Add(23*time.Hour+50*time.Minute), 10)
	h.log(t, "Sekreter")
	h.log(t, "Sekreter")
	h.clock.Advance(20 * time.Minute) // 00:10 on Wednesday
	res := h.log(t, "Sekreter")

	if res.TodaysCalls != 1 || res.Points != 3 {
		t.Fatalf("after rollover = %+v", res)
	}
	if h.history.rows[dayKey{userID, "2025-06-10"}].CallsMade != 2 || h.history.rows[dayKey{userID, "2025-06-11"}].CallsMade != 1 {
		t.Fatalf("history rows = %+v", h.history.rows)
	}
}

func TestWeekendSkipsLedger(t *testing.T) {
	saturday := calday.Date(2025, time.June, 14).Add(11 * time.Hour)
	h := newHarness(t, saturday, 3)
	res := h.log(t, "Satınalma")

	if len(h.ledger.records) != 0 {
		t.Fatalf("ledger written on a weekend")
	}
	if len(h.history.rows) != 1 {
		t.Fatalf("history rows = %d", len(h.history.rows))
	}
	for _, s := range res.Steps {
		if s.Step == StepLedger {
			t.Fatalf("ledger step ran: %+v", res.Steps)
		}
	}
}

func TestNoNeedMarksCompany(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 3)
	h.log(t, "İhtiyaç Yok")
	if got := h.repo.companies[companyID].spectro; got != domain.NoNeedSpectro {
		t.Fatalf("spectro = %q", got)
	}
}

func TestSideEffectFailuresAreIsolated(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 1)
	h.repo.touchErr = errors.New("company table locked")
	h.history.err = errors.New("history down")

	res := h.log(t, "Potansiyel")

	if len(h.repo.calls) != 1 {
		t.Fatalf("call record lost")
	}
	got := map[string]bool{}
	for _, s := range res.Steps {
		got[s.Step] = s.OK
	}
	if got[StepCompany] || got[StepHistory] || !got[StepUser] || !got[StepLedger] {
		t.Fatalf("steps = %+v", res.Steps)
	}
	if rec := h.ledger.records[dayKey{userID, "2025-06-10"}]; rec == nil || !rec.TargetReached {
		t.Fatalf("ledger should still apply: %+v", rec)
	}
}

func TestUserFailureStillFeedsStores(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 2)
	h.users.err = errors.New("deadlock")

	h.log(t, "Potansiyel")

	row := h.history.rows[dayKey{userID, "2025-06-10"}]
	if row == nil || row.CallsMade != 1 || row.TargetForDay != 2 {
		t.Fatalf("history row = %+v", row)
	}
}

func TestVanishedUserStillFeedsStores(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 1)
	h.users.gone = true

	res := h.log(t, "Potansiyel")

	got := map[string]bool{}
	for _, s := range res.Steps {
		got[s.Step] = s.OK
	}
	if got[StepUser] || !got[StepHistory] || !got[StepLedger] {
		t.Fatalf("steps = %+v", res.Steps)
	}
	row := h.history.rows[dayKey{userID, "2025-06-10"}]
	if row == nil || row.CallsMade != 1 || row.TargetForDay != 1 || !row.TargetReached {
		t.Fatalf("history row = %+v", row)
	}
	rec := h.ledger.records[dayKey{userID, "2025-06-10"}]
	if rec == nil || rec.DailyTarget != 1 || !rec.TargetReached {
		t.Fatalf("ledger record = %+v", rec)
	}
	if res.Points != 0 || res.TodaysCalls != 0 {
		t.Fatalf("counters reported after a failed user step: %+v", res)
	}
}

func TestValidationRejectsBeforeWrites(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 3)
	ctx := context.Background()

	cases := []struct {
		name string
		in   domain.LogInput
		code perr.ErrorCode
	}{
		{"bad outcome", domain.LogInput{CompanyID: companyID, UserID: userID, Outcome: "Maybe"}, perr.ErrorCodeValidation},
		{"missing company", domain.LogInput{UserID: userID}, perr.ErrorCodeValidation},
		{"missing user", domain.LogInput{CompanyID: companyID}, perr.ErrorCodeValidation},
		{"unknown company", domain.LogInput{CompanyID: "11111111-2222-4333-8444-555555555555", UserID: userID}, perr.ErrorCodeValidation},
		{"unknown user", domain.LogInput{CompanyID: companyID, UserID: "11111111-2222-4333-8444-555555555555"}, perr.ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.svc.Log(ctx, tc.in); !perr.IsCode(err, tc.code) {
				t.Fatalf("err = %v", err)
			}
		})
	}
	if len(h.repo.calls) != 0 || h.repo.companies[companyID].totalCalls != 0 {
		t.Fatalf("writes happened on rejected input")
	}
}

func TestExplicitCallDate(t *testing.T) {
	h := newHarness(t, tuesday.Add(15*time.Hour), 3)
	when := tuesday.Add(9 * time.Hour)
	res, err := h.svc.Log(context.Background(), domain.LogInput{CompanyID: companyID, UserID: userID, Outcome: "Sekreter", When: &when})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !res.CallDate.Equal(when) {
		t.Fatalf("call date = %v", res.CallDate)
	}
	u, _ := h.users.Get(context.Background(), userID)
	if !u.LastCallAt.Equal(tuesday.Add(15 * time.Hour)) {
		t.Fatalf("counter should use the pipeline instant, got %v", u.LastCallAt)
	}
}

func TestToday(t *testing.T) {
	h := newHarness(t, tuesday.Add(9*time.Hour), 3)
	h.log(t, "Sekreter")
	h.clock.Advance(time.Hour)
	h.log(t, "")

	list, err := h.svc.Today(context.Background(), userID)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if list.Count != 2 || list.Calls[0].ID != "call-2" {
		t.Fatalf("list = %+v", list)
	}

	h.clock.Advance(24 * time.Hour)
	list, _ = h.svc.Today(context.Background(), userID)
	if list.Count != 0 || list.Calls == nil {
		t.Fatalf("next day list = %+v", list)
	}

	if _, err := h.svc.Today(context.Background(), "nope"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad id err = %v", err)
	}
}
