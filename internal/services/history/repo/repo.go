// Package repo provides postgres access for the daily call history
package repo

import (
	"context"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/store"
	"callcrm/internal/services/history/domain"
)

// Repo is the minimal persistence surface for the history store
type Repo interface {
	// Mark records calls as counted for (user, day) and returns how many
	// were not counted before
	Mark(ctx context.Context, userID string, day time.Time, callIDs []string) (int, error)

	// Add upserts the row and adds n to calls_made, recomputing target_reached
	Add(ctx context.Context, userID string, day time.Time, n, target int, refreshTarget bool) (domain.DayRow, error)

	// Ensure creates an empty row when absent and returns the stored row
	Ensure(ctx context.Context, userID string, day time.Time, target int) (domain.DayRow, error)

	Range(ctx context.Context, userID string, from, to time.Time) ([]domain.DayRow, error)
	Recent(ctx context.Context, userID string, upTo time.Time, limit int) ([]domain.DayRow, error)
	CountReached(ctx context.Context, userID string) (int, error)
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

const rowCols = `day, calls_made, target_for_day, target_reached`

func scanRow(row store.Row) (domain.DayRow, error) {
	var d domain.DayRow
	if err := row.Scan(&d.Day, &d.CallsMade, &d.TargetForDay, &d.TargetReached); err != nil {
		return domain.DayRow{}, err
	}
	d.Day = calday.FromDate(d.Day)
	return d, nil
}

func (r *queries) Mark(ctx context.Context, userID string, day time.Time, callIDs []string) (int, error) {
	const sql = `
insert into daily_call_history_marks (call_record_id, user_id, day)
select id::uuid, $2::uuid, $3::date from unnest($1::text[]) as id
on conflict (call_record_id) do nothing
`
	tag, err := r.q.Exec(ctx, sql, callIDs, userID, calday.Key(day))
	if err != nil {
		return 0, perr.FromPostgres(err, "mark counted calls")
	}
	return int(tag.RowsAffected()), nil
}

func (r *queries) Add(ctx context.Context, userID string, day time.Time, n, target int, refreshTarget bool) (domain.DayRow, error) {
	// the target used for target_reached must match the one stored
	const sql = `
insert into daily_call_history as h (user_id, day, calls_made, target_for_day, target_reached)
values ($1::uuid, $2::date, $3::int, $4::int, $3::int >= $4::int)
on conflict (user_id, day) do update set
    calls_made     = h.calls_made + excluded.calls_made,
    target_for_day = case when $5::boolean then excluded.target_for_day else h.target_for_day end,
    target_reached = h.calls_made + excluded.calls_made >=
                     case when $5::boolean then excluded.target_for_day else h.target_for_day end,
    updated_at     = now()
returning ` + rowCols
	row, err := scanRow(r.q.QueryRow(ctx, sql, userID, calday.Key(day), n, target, refreshTarget))
	if err != nil {
		return domain.DayRow{}, perr.FromPostgres(err, "add history calls")
	}
	return row, nil
}

func (r *queries) Ensure(ctx context.Context, userID string, day time.Time, target int) (domain.DayRow, error) {
	if _, err := r.q.Exec(ctx, `
insert into daily_call_history (user_id, day, calls_made, target_for_day, target_reached)
values ($1::uuid, $2::date, 0, $3::int, false)
on conflict (user_id, day) do nothing`, userID, calday.Key(day), target); err != nil {
		return domain.DayRow{}, perr.FromPostgres(err, "ensure history row")
	}
	row, err := store.One(ctx, r.q, scanRow,
		`select `+rowCols+` from daily_call_history where user_id = $1::uuid and day = $2::date`,
		userID, calday.Key(day))
	if err != nil {
		return domain.DayRow{}, perr.FromPostgres(err, "load history row")
	}
	return row, nil
}

func (r *queries) Range(ctx context.Context, userID string, from, to time.Time) ([]domain.DayRow, error) {
	out, err := store.Many(ctx, r.q, scanRow, `
select `+rowCols+` from daily_call_history
 where user_id = $1::uuid and day between $2::date and $3::date
 order by day asc`, userID, calday.Key(from), calday.Key(to))
	if err != nil {
		return nil, perr.FromPostgres(err, "history range")
	}
	return out, nil
}

func (r *queries) Recent(ctx context.Context, userID string, upTo time.Time, limit int) ([]domain.DayRow, error) {
	out, err := store.Many(ctx, r.q, scanRow, `
select `+rowCols+` from daily_call_history
 where user_id = $1::uuid and day <= $2::date
 order by day desc
 limit $3`, userID, calday.Key(upTo), limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "recent history")
	}
	return out, nil
}

func (r *queries) CountReached(ctx context.Context, userID string) (int, error) {
	n, err := store.Scalar[int](ctx, r.q,
		`select count(*)::int from daily_call_history where user_id = $1::uuid and target_reached`, userID)
	if err != nil {
		return 0, perr.FromPostgres(err, "count reached days")
	}
	return n, nil
}
