// Package repo provides postgres access for users
package repo

import (
	"context"
	"time"

	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/store"
	"callcrm/internal/services/users/domain"
)

// Repo is the minimal persistence surface for users
type Repo interface {
	Get(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]domain.User, error)

	// Bump adds one point and one call; the daily counter restarts at 1
	// when the last call is older than dayStart
	Bump(ctx context.Context, id string, asOf, dayStart time.Time) (points, todays int, err error)

	// ResetStale zeroes todays_calls when the last call is older than dayStart
	ResetStale(ctx context.Context, id string, dayStart time.Time) (bool, error)

	SetTarget(ctx context.Context, id string, target int) error
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

const userCols = `id::text, user_name, email, level, target_call_number, points, todays_calls, last_call_at, is_active, created_at`

func scanUser(row store.Row) (domain.User, error) {
	var (
		u      domain.User
		target *int32
		last   *time.Time
	)
	if err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Level, &target, &u.Points, &u.TodaysCalls, &last, &u.IsActive, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	if target != nil {
		t := int(*target)
		u.Target = &t
	}
	if last != nil {
		u.LastCallAt = *last
	}
	return u, nil
}

func (r *queries) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := store.One(ctx, r.q, scanUser, `select `+userCols+` from users where id = $1::uuid`, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.User{}, perr.NotFoundf("user %s not found", id)
		}
		return domain.User{}, perr.FromPostgres(err, "load user")
	}
	return u, nil
}

func (r *queries) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	out, err := store.Many(ctx, r.q, scanUser,
		`select `+userCols+` from users where ($1 = false or is_active) order by user_name asc, id asc`, activeOnly)
	if err != nil {
		return nil, perr.FromPostgres(err, "list users")
	}
	return out, nil
}

func (r *queries) Bump(ctx context.Context, id string, asOf, dayStart time.Time) (int, int, error) {
	const sql = `
update users
   set points       = points + 1,
       todays_calls = case when last_call_at is null or last_call_at < $3 then 1 else todays_calls + 1 end,
       last_call_at = $2
 where id = $1::uuid
returning points, todays_calls
`
	var points, todays int
	if err := r.q.QueryRow(ctx, sql, id, asOf.UTC(), dayStart.UTC()).Scan(&points, &todays); err != nil {
		return 0, 0, perr.FromPostgres(err, "bump user counters")
	}
	return points, todays, nil
}

func (r *queries) ResetStale(ctx context.Context, id string, dayStart time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
update users set todays_calls = 0
 where id = $1::uuid and todays_calls <> 0
   and (last_call_at is null or last_call_at < $2)`, id, dayStart.UTC())
	if err != nil {
		return false, perr.FromPostgres(err, "reset daily counter")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *queries) SetTarget(ctx context.Context, id string, target int) error {
	tag, err := r.q.Exec(ctx, `update users set target_call_number = $2 where id = $1::uuid`, id, target)
	if err != nil {
		return perr.FromPostgres(err, "set target")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("user %s not found", id)
	}
	return nil
}
