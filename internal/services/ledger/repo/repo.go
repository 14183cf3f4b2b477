// Package repo provides postgres access for daily user records
package repo

import (
	"context"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/store"
	"callcrm/internal/services/ledger/domain"
)

// CallRow is a resulted call read from the call log for replay
type CallRow struct {
	ID        string
	UserID    string
	CompanyID string
	Outcome   string
	CallDate  time.Time
}

// Repo is the minimal persistence surface for daily records
type Repo interface {
	// Create inserts an empty record; a second record for (user, day) fails
	// with a duplicate key error
	Create(ctx context.Context, id, userID string, day time.Time, target int) (domain.Record, error)
	Find(ctx context.Context, userID string, day time.Time) (domain.Record, error)

	// Lock takes the record's row lock for the rest of the transaction so
	// concurrent appends to one record recount one after another
	Lock(ctx context.Context, recordID string) error

	// AddEntry attaches a call to a record; false when the call is already on one
	AddEntry(ctx context.Context, recordID string, e domain.Entry) (bool, error)

	// Recount derives call_count and target_reached from the entries
	Recount(ctx context.Context, recordID string) (domain.Record, error)

	Entries(ctx context.Context, recordID string) ([]domain.Entry, error)
	ResultedBetween(ctx context.Context, from, to time.Time) ([]CallRow, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const recordCols = `id::text, user_id::text, day, daily_target, call_count, target_reached`

func scanRecord(row store.Row) (domain.Record, error) {
	var r domain.Record
	if err := row.Scan(&r.ID, &r.UserID, &r.Day, &r.DailyTarget, &r.CallCount, &r.TargetReached); err != nil {
		return domain.Record{}, err
	}
	r.Day = calday.FromDate(r.Day)
	r.Date = calday.Key(r.Day)
	return r, nil
}

func (r *queries) Create(ctx context.Context, id, userID string, day time.Time, target int) (domain.Record, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, `
insert into daily_user_records (id, user_id, day, daily_target, call_count, target_reached)
values ($1::uuid, $2::uuid, $3::date, $4::int, 0, false)
returning `+recordCols, id, userID, calday.Key(day), target))
	if err != nil {
		return domain.Record{}, perr.FromPostgres(err, "create daily record")
	}
	return rec, nil
}

func (r *queries) Find(ctx context.Context, userID string, day time.Time) (domain.Record, error) {
	rec, err := store.One(ctx, r.q, scanRecord,
		`select `+recordCols+` from daily_user_records where user_id = $1::uuid and day = $2::date`,
		userID, calday.Key(day))
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Record{}, perr.NotFoundf("no daily record for %s on %s", userID, calday.Key(day))
		}
		return domain.Record{}, perr.FromPostgres(err, "find daily record")
	}
	return rec, nil
}

func (r *queries) Lock(ctx context.Context, recordID string) error {
	var one int
	err := r.q.QueryRow(ctx, `select 1 from daily_user_records where id = $1::uuid for update`, recordID).Scan(&one)
	if err != nil {
		return perr.FromPostgres(err, "lock daily record")
	}
	return nil
}

func (r *queries) AddEntry(ctx context.Context, recordID string, e domain.Entry) (bool, error) {
	tag, err := r.q.Exec(ctx, `
insert into daily_user_record_calls (record_id, call_record_id, company_id, outcome, call_time)
values ($1::uuid, $2::uuid, $3::uuid, $4, $5)
on conflict (call_record_id) do nothing`,
		recordID, e.CallRecordID, e.CompanyID, e.Outcome, e.CallTime.UTC())
	if err != nil {
		return false, perr.FromPostgres(err, "add daily record call")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *queries) Recount(ctx context.Context, recordID string) (domain.Record, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, `
update daily_user_records d
   set call_count = c.n, target_reached = c.n >= d.daily_target, updated_at = now()
  from (select count(*)::int as n from daily_user_record_calls where record_id = $1::uuid) c
 where d.id = $1::uuid
returning d.id::text, d.user_id::text, d.day, d.daily_target, d.call_count, d.target_reached`, recordID))
	if err != nil {
		return domain.Record{}, perr.FromPostgres(err, "recount daily record")
	}
	return rec, nil
}

func (r *queries) Entries(ctx context.Context, recordID string) ([]domain.Entry, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Entry, error) {
		var e domain.Entry
		err := row.Scan(&e.CallRecordID, &e.CompanyID, &e.CompanyName, &e.Outcome, &e.CallTime)
		return e, err
	}, `
select c.call_record_id::text, c.company_id::text, coalesce(co.company_name, ''), c.outcome, c.call_time
  from daily_user_record_calls c
  left join companies co on co.id = c.company_id
 where c.record_id = $1::uuid
 order by c.call_time asc`, recordID)
	if err != nil {
		return nil, perr.FromPostgres(err, "daily record calls")
	}
	return out, nil
}

func (r *queries) ResultedBetween(ctx context.Context, from, to time.Time) ([]CallRow, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (CallRow, error) {
		var c CallRow
		err := row.Scan(&c.ID, &c.UserID, &c.CompanyID, &c.Outcome, &c.CallDate)
		return c, err
	}, `
select id::text, user_id::text, company_id::text, outcome, call_date
  from call_records
 where outcome is not null and call_date >= $1 and call_date < $2
 order by call_date asc, id asc`, from.UTC(), to.UTC())
	if err != nil {
		return nil, perr.FromPostgres(err, "resulted calls")
	}
	return out, nil
}
