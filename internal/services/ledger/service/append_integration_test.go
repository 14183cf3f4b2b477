//go:build integration_pg

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/platform/store/pgtest"
	"callcrm/internal/services/ledger/domain"
	"callcrm/internal/services/ledger/repo"
	userdom "callcrm/internal/services/users/domain"

	"github.com/google/uuid"
)

func TestConcurrentAppendsKeepCountInStep(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()

	tuesday := calday.Date(2025, time.June, 10)
	target := 4
	userID, companyID := pgtest.Seed(t, db, &target, tuesday.AddDate(0, -1, 0))

	s := New(db, repo.NewPG(), fakeUsers{userID: userdom.User{ID: userID, Target: &target}})
	if _, err := s.Ensure(ctx, userID, tuesday, target); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
		if _, err := db.Exec(ctx, `
insert into call_records (id, company_id, user_id, call_date, outcome)
values ($1::uuid, $2::uuid, $3::uuid, $4, 'Potansiyel')`, ids[i], companyID, userID, tuesday.Add(10*time.Hour).UTC()); err != nil {
			t.Fatalf("insert call: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Append(ctx, domain.AppendInput{
				UserID: userID,
				Day:    tuesday,
				Target: target,
				Entry: domain.Entry{
					CallRecordID: id,
					CompanyID:    companyID,
					Outcome:      "Potansiyel",
					CallTime:     tuesday.Add(10*time.Hour + time.Duration(i)*time.Second),
				},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rec, err := s.Get(ctx, userID, tuesday)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.CallCount != n || len(rec.Calls) != n || !rec.TargetReached {
		t.Fatalf("record count = %d, calls = %d, reached = %v", rec.CallCount, len(rec.Calls), rec.TargetReached)
	}
}
