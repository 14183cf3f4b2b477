package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	kit "callcrm/internal/platform/testkit"
	"callcrm/internal/services/callsync/domain"
	"callcrm/internal/services/callsync/repo"
	histdom "callcrm/internal/services/history/domain"
	ledgerdom "callcrm/internal/services/ledger/domain"
	userdom "callcrm/internal/services/users/domain"
)

type logged struct {
	domain.Call
	createdAt time.Time
}

type fakeRepo struct {
	mu     sync.Mutex
	calls  []logged
	err    error
	since  []time.Time
	gate   chan struct{}
	inside chan struct{}
}

func (f *fakeRepo) add(id, user string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, logged{Call: domain.Call{ID: id, UserID: user, CompanyID: "co", Outcome: "Sekreter", CallDate: at}, createdAt: at})
}

func (f *fakeRepo) ResultedSince(ctx context.Context, since time.Time) ([]domain.Call, error) {
	if f.inside != nil {
		f.inside <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = append(f.since, since)
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Call
	for _, c := range f.calls {
		if !c.createdAt.Before(since) {
			out = append(out, c.Call)
		}
	}
	return out, nil
}

type fakeUsers map[string]userdom.User

func (f fakeUsers) Get(_ context.Context, id string) (userdom.User, error) {
	u, ok := f[id]
	if !ok {
		return userdom.User{}, perr.NotFoundf("user %s not found", id)
	}
	return u, nil
}

func (f fakeUsers) Active(context.Context) ([]userdom.User, error) { return nil, nil }

type fakeHistory struct {
	mu     sync.Mutex
	rows   map[string]*histdom.DayRow
	marked map[string]bool
	inputs []histdom.ApplyInput
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{rows: map[string]*histdom.DayRow{}, marked: map[string]bool{}}
}

func (f *fakeHistory) Apply(_ context.Context, in histdom.ApplyInput) (histdom.ApplyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	k := in.UserID + "|" + calday.Key(in.Day)
	row, ok := f.rows[k]
	if !ok {
		row = &histdom.DayRow{Day: calday.Floor(in.Day), TargetForDay: in.Target}
		f.rows[k] = row
	} else if in.RefreshTarget {
		row.TargetForDay = in.Target
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

func (f *fakeHistory) row(user string, day time.Time) histdom.DayRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.rows[user+"|"+calday.Key(day)]; r != nil {
		return *r
	}
	return histdom.DayRow{}
}

type fakeLedger struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (f *fakeLedger) Append(_ context.Context, in ledgerdom.AppendInput) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen[in.Entry.CallRecordID] {
		return false, nil
	}
	f.seen[in.Entry.CallRecordID] = true
	return true, nil
}

var tuesday = calday.Date(2025, time.June, 10)

type harness struct {
	svc     *Svc
	repo    *fakeRepo
	history *fakeHistory
	ledger  *fakeLedger
	clock   *kit.Clock
}

func newHarness(t *testing.T, now time.Time, users fakeUsers) *harness {
	t.Helper()
	h := &harness{
		repo:    &fakeRepo{},
		history: newFakeHistory(),
		ledger:  &fakeLedger{seen: map[string]bool{}},
		clock:   kit.NewClock(now),
	}
	bind := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return h.repo })
	h.svc = New(&repokit.FakeTx{}, bind, Deps{Users: users, History: h.history, Ledger: h.ledger}, h.clock, Config{
		Interval: time.Minute,
		Overlap:  2 * time.Minute,
		Lookback: 10 * time.Minute,
	})
	return h
}

func intp(n int) *int { return &n }

func TestNewPanics(t *testing.T) {
	bind := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return &fakeRepo{} })
	kit.MustPanic(t, func() { New(&repokit.FakeTx{}, bind, Deps{}, nil, Config{}) })
}

func TestRerunWithoutNewCallsIsIdempotent(t *testing.T) {
	now := tuesday.Add(10 * time.Hour)
	h := newHarness(t, now, fakeUsers{"u1": {ID: "u1", Target: intp(3)}})
	h.repo.add("c1", "u1", now.Add(-time.Minute))
	h.repo.add("c2", "u1", now.Add(-30*time.Second))

	ctx := context.Background()
	first, err := h.svc.RunOnce(ctx)
	if err != nil || first.Added != 2 || first.Groups != 1 {
		t.Fatalf("first = %+v, %v", first, err)
	}
	h.clock.Advance(time.Minute)
	second, err := h.svc.RunOnce(ctx)
	if err != nil || second.Added != 0 || second.Calls != 2 {
		t.Fatalf("second = %+v, %v", second, err)
	}
	if row := h.history.row("u1", tuesday); row.CallsMade != 2 || row.TargetReached {
		t.Fatalf("row = %+v", row)
	}
}

func TestSyncAddsToExistingCount(t *testing.T) {
	now := tuesday.Add(14 * time.Hour)
	h := newHarness(t, now, fakeUsers{"u1": {ID: "u1", Target: intp(5)}})

	// three calls already counted by the synchronous path
	for _, id := range []string{"c1", "c2", "c3"} {
		h.repo.add(id, "u1", now.Add(-5*time.Minute))
		_, _ = h.history.Apply(context.Background(), histdom.ApplyInput{UserID: "u1", Day: now, CallIDs: []string{id}, Target: 5})
	}
	// two the pipeline missed
	h.repo.add("c4", "u1", now.Add(-3*time.Minute))
	h.repo.add("c5", "u1", now.Add(-2*time.Minute))

	res, err := h.svc.RunOnce(context.Background())
	if err != nil || res.Added != 2 {
		t.Fatalf("res = %+v, %v", res, err)
	}
	row := h.history.row("u1", tuesday)
	if row.CallsMade != 5 || !row.TargetReached {
		t.Fatalf("row = %+v", row)
	}
	if res.LedgerAdded != 5 {
		t.Fatalf("ledger replay = %d", res.LedgerAdded)
	}
}

func TestFailedRunKeepsWindow(t *testing.T) {
	now := tuesday.Add(10 * time.Hour)
	h := newHarness(t, now, fakeUsers{"u1": {ID: "u1"}})
	before := h.svc.Status().LastSync

	h.repo.err = errors.New("connection refused")
	h.clock.Advance(time.Minute)
	if _, err := h.svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if st := h.svc.Status(); !st.LastSync.Equal(before) || st.State != "idle" {
		t.Fatalf("status after failure = %+v", st)
	}

	h.repo.err = nil
	h.clock.Advance(time.Minute)
	if _, err := h.svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !h.repo.since[0].Equal(h.repo.since[1]) {
		t.Fatalf("retry window moved: %v", h.repo.since)
	}
	if !h.svc.Status().LastSync.Equal(now.Add(2 * time.Minute)) {
		t.Fatalf("lastSync = %v", h.svc.Status().LastSync)
	}
}

func TestWindowUsesOverlap(t *testing.T) {
	now := tuesday.Add(10 * time.Hour)
	h := newHarness(t, now, fakeUsers{})

	_, _ = h.svc.RunOnce(context.Background())
	h.clock.Advance(time.Minute)
	_, _ = h.svc.RunOnce(context.Background())

	if want := now.Add(-12 * time.Minute); !h.repo.since[0].Equal(want) {
		t.Fatalf("first since = %v, want %v", h.repo.since[0], want)
	}
	if want := now.Add(-2 * time.Minute); !h.repo.since[1].Equal(want) {
		t.Fatalf("second since = %v, want %v", h.repo.since[1], want)
	}
}

func TestConcurrentRunIsSkipped(t *testing.T) {
	h := newHarness(t, tuesday.Add(10*time.Hour), fakeUsers{})
	h.repo.gate = make(chan struct{})
	h.repo.inside = make(chan struct{}, 1)

	done := make(chan domain.RunResult)
	go func() {
		res, _ := h.svc.RunOnce(context.Background())
		done <- res
	}()
	<-h.repo.inside

	if st := h.svc.Status(); st.State != "running" {
		t.Fatalf("state = %s", st.State)
	}
	// a second caller must not block on the gate
	h.repo.inside = nil
	res, err := h.svc.RunOnce(context.Background())
	if err != nil || !res.Skipped {
		t.Fatalf("second run = %+v, %v", res, err)
	}

	close(h.repo.gate)
	if first := <-done; first.Skipped {
		t.Fatalf("first run skipped")
	}
	if st := h.svc.Status(); st.State != "idle" {
		t.Fatalf("state after run = %s", st.State)
	}
}

func TestTodayRefreshesTarget(t *testing.T) {
	now := tuesday.Add(16 * time.Hour)
	users := fakeUsers{"u1": {ID: "u1", Target: intp(2)}}
	h := newHarness(t, now, users)

	yesterday := calday.AddDays(tuesday, -1).Add(15 * time.Hour)
	_, _ = h.history.Apply(context.Background(), histdom.ApplyInput{UserID: "u1", Day: now, CallIDs: []string{"old-today"}, Target: 10})
	_, _ = h.history.Apply(context.Background(), histdom.ApplyInput{UserID: "u1", Day: yesterday, CallIDs: []string{"old-y"}, Target: 10})

	h.repo.add("c1", "u1", now.Add(-time.Minute))
	// logged late for yesterday
	h.repo.calls = append(h.repo.calls, logged{
		Call:      domain.Call{ID: "c2", UserID: "u1", CompanyID: "co", Outcome: "Sekreter", CallDate: yesterday},
		createdAt: now.Add(-time.Minute),
	})

	if _, err := h.svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if row := h.history.row("u1", tuesday); row.TargetForDay != 2 || row.CallsMade != 2 || !row.TargetReached {
		t.Fatalf("today = %+v", row)
	}
	if row := h.history.row("u1", yesterday); row.TargetForDay != 10 || row.CallsMade != 2 || row.TargetReached {
		t.Fatalf("yesterday = %+v", row)
	}
}

func TestMissingUserAndLedgerFailureDoNotFailRun(t *testing.T) {
	now := tuesday.Add(10 * time.Hour)
	h := newHarness(t, now, fakeUsers{"u1": {ID: "u1"}})
	h.ledger.err = errors.New("ledger down")
	h.repo.add("c1", "ghost", now.Add(-time.Minute))
	h.repo.add("c2", "u1", now.Add(-time.Minute))

	res, err := h.svc.RunOnce(context.Background())
	if err != nil || res.Added != 1 || res.LedgerAdded != 0 || res.Groups != 2 {
		t.Fatalf("res = %+v, %v", res, err)
	}
	if !h.svc.Status().LastSync.Equal(now) {
		t.Fatalf("lastSync not advanced")
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	now := tuesday.Add(10 * time.Hour)
	h := newHarness(t, now, fakeUsers{"u1": {ID: "u1"}})

	ticks := make(chan time.Time)
	stopped := false
	h.svc.NewTicker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() { stopped = true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.svc.Run(ctx) }()

	for i := 0; i < 2; i++ {
		h.clock.Advance(time.Minute)
		ticks <- h.clock.Now()
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
	if !stopped {
		t.Fatalf("ticker not stopped")
	}

	h.repo.mu.Lock()
	runs := len(h.repo.since)
	h.repo.mu.Unlock()
	if runs < 2 {
		t.Fatalf("runs = %d", runs)
	}
}

func TestGroupCalls(t *testing.T) {
	late := tuesday.Add(23*time.Hour + 59*time.Minute)
	early := tuesday.Add(24*time.Hour + time.Minute)
	gs := groupCalls([]domain.Call{
		{ID: "a", UserID: "u2", CallDate: late},
		{ID: "b", UserID: "u1", CallDate: early},
		{ID: "c", UserID: "u1", CallDate: late},
		{ID: "d", UserID: "u1", CallDate: late.Add(-time.Hour)},
	})
	if len(gs) != 3 {
		t.Fatalf("groups = %d", len(gs))
	}
	if gs[0].userID != "u1" || calday.Key(gs[0].day) != "2025-06-10" || len(gs[0].calls) != 2 {
		t.Fatalf("g0 = %+v", gs[0])
	}
	if calday.Key(gs[1].day) != "2025-06-11" || gs[2].userID != "u2" {
		t.Fatalf("g1 = %+v g2 = %+v", gs[1], gs[2])
	}
}
