//go:build integration_pg

package api

import (
	"context"
	"testing"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/module"
	"callcrm/internal/platform/config"
	"callcrm/internal/platform/logger"
	"callcrm/internal/platform/store/pgtest"
	kit "callcrm/internal/platform/testkit"
	callsdom "callcrm/internal/services/calls/domain"
	callsmod "callcrm/internal/services/calls/module"
	histmod "callcrm/internal/services/history/module"
	ledgermod "callcrm/internal/services/ledger/module"
)

func TestCallPipelineAgainstPostgres(t *testing.T) {
	module.Reset()
	db := pgtest.Start(t)
	ctx := context.Background()

	tuesday := calday.Date(2025, time.June, 10)
	clock := kit.NewClock(tuesday.Add(10 * time.Hour))
	target := 3
	userID, companyID := pgtest.Seed(t, db, &target, tuesday.AddDate(0, -1, 0))

	app := Build(modkit.Deps{Log: *logger.Get(), Cfg: config.New(), PG: db, Clock: clock})
	calls := module.MustPortsOf[callsmod.Ports](app.Calls).Calls
	history := module.MustPortsOf[histmod.Ports](app.History).History
	ledger := module.MustPortsOf[ledgermod.Ports](app.Ledger).Ledger

	var last callsdom.LogResult
	for i := 0; i < 3; i++ {
		res, err := calls.Log(ctx, callsdom.LogInput{CompanyID: companyID, UserID: userID, Outcome: "Potansiyel"})
		if err != nil {
			t.Fatalf("log call %d: %v", i, err)
		}
		for _, st := range res.Steps {
			if !st.OK {
				t.Fatalf("step %s failed: %s", st.Step, st.Err)
			}
		}
		last = res
		clock.Advance(time.Minute)
	}
	if last.TodaysCalls != 3 {
		t.Fatalf("todaysCalls = %d", last.TodaysCalls)
	}

	day, err := history.EnsureDay(ctx, userID, tuesday)
	if err != nil {
		t.Fatalf("history day: %v", err)
	}
	if day.CallsMade != 3 || !day.TargetReached {
		t.Fatalf("history = %+v", day)
	}

	rec, err := ledger.Get(ctx, userID, tuesday)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if rec.CallCount != 3 || !rec.TargetReached || len(rec.Calls) != 3 {
		t.Fatalf("ledger = %+v", rec)
	}

	run, err := app.SyncRunner().RunOnce(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if run.Calls != 3 || run.Added != 0 {
		t.Fatalf("rerun over counted calls: %+v", run)
	}

	today, err := calls.Today(ctx, userID)
	if err != nil || today.Count != 3 {
		t.Fatalf("today = %+v, %v", today, err)
	}
	if today.Calls[0].CompanyName != "Acme Lab" {
		t.Fatalf("company = %q", today.Calls[0].CompanyName)
	}
}

func TestSyncRepairsMissedHistory(t *testing.T) {
	module.Reset()
	db := pgtest.Start(t)
	ctx := context.Background()

	tuesday := calday.Date(2025, time.June, 10)
	clock := kit.NewClock(tuesday.Add(15 * time.Hour))
	target := 2
	userID, companyID := pgtest.Seed(t, db, &target, tuesday.AddDate(0, -1, 0))

	// two resulted calls whose side effects never ran
	for _, at := range []time.Duration{9 * time.Hour, 14 * time.Hour} {
		if _, err := db.Exec(ctx, `
insert into call_records (id, company_id, user_id, call_date, outcome)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3, 'Sekreter')`, companyID, userID, tuesday.Add(at).UTC()); err != nil {
			t.Fatalf("insert call: %v", err)
		}
	}

	app := Build(modkit.Deps{Log: *logger.Get(), Cfg: config.New(), PG: db, Clock: clock})
	history := module.MustPortsOf[histmod.Ports](app.History).History
	ledger := module.MustPortsOf[ledgermod.Ports](app.Ledger).Ledger

	run, err := app.SyncRunner().RunOnce(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if run.Added != 2 || run.LedgerAdded != 2 {
		t.Fatalf("run = %+v", run)
	}
	again, err := app.SyncRunner().RunOnce(ctx)
	if err != nil || again.Added != 0 {
		t.Fatalf("second run = %+v, %v", again, err)
	}

	day, err := history.EnsureDay(ctx, userID, tuesday)
	if err != nil || day.CallsMade != 2 || !day.TargetReached {
		t.Fatalf("history = %+v, %v", day, err)
	}
	rec, err := ledger.Get(ctx, userID, tuesday)
	if err != nil || rec.CallCount != 2 {
		t.Fatalf("ledger = %+v, %v", rec, err)
	}
}

func TestLifecycleEnsureIsIdempotent(t *testing.T) {
	module.Reset()
	db := pgtest.Start(t)
	ctx := context.Background()

	wednesday := calday.Date(2025, time.June, 11)
	clock := kit.NewClock(wednesday.Add(time.Minute))
	target := 5
	userID, _ := pgtest.Seed(t, db, &target, wednesday.AddDate(0, -1, 0))

	app := Build(modkit.Deps{Log: *logger.Get(), Cfg: config.New(), PG: db, Clock: clock})
	lc := app.LifecycleRunner()

	first, err := lc.EnsureRecordsForDate(ctx, wednesday)
	if err != nil || first.Created != 1 {
		t.Fatalf("first = %+v, %v", first, err)
	}
	second, err := lc.EnsureRecordsForDate(ctx, wednesday)
	if err != nil || second.Created != 0 || second.Existing != 1 {
		t.Fatalf("second = %+v, %v", second, err)
	}
	sat, err := lc.EnsureRecordsForDate(ctx, calday.Date(2025, time.June, 14))
	if err != nil || !sat.Skipped {
		t.Fatalf("saturday = %+v, %v", sat, err)
	}

	rec, err := module.MustPortsOf[ledgermod.Ports](app.Ledger).Ledger.Get(ctx, userID, wednesday)
	if err != nil || rec.DailyTarget != 5 || rec.CallCount != 0 {
		t.Fatalf("record = %+v, %v", rec, err)
	}
}
