// Package repo provides postgres access for the call log and company counters
package repo

import (
	"context"
	"time"

	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/store"
	"callcrm/internal/services/calls/domain"
)

// Repo is the minimal persistence surface for the call log
type Repo interface {
	// CompanyExists reports whether the company can be referenced by a call
	CompanyExists(ctx context.Context, id string) (bool, error)

	// Insert appends one call record; records are never updated
	Insert(ctx context.Context, c domain.Call) (domain.Call, error)

	// TouchCompany bumps the contact counter and sets the last contact time;
	// a non empty spectro is written too
	TouchCompany(ctx context.Context, id string, at time.Time, spectro string) error

	// Between lists a user's calls with call_date in [from, to), newest first
	Between(ctx context.Context, userID string, from, to time.Time) ([]domain.TodayCall, error)
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

func (r *queries) CompanyExists(ctx context.Context, id string) (bool, error) {
	ok, err := store.Scalar[bool](ctx, r.q, `select exists(select 1 from companies where id = $1::uuid)`, id)
	if err != nil {
		return false, perr.FromPostgres(err, "company lookup")
	}
	return ok, nil
}

func (r *queries) Insert(ctx context.Context, c domain.Call) (domain.Call, error) {
	var outcome *string
	if c.HasOutcome() {
		s := string(c.Outcome)
		outcome = &s
	}
	err := r.q.QueryRow(ctx, `
insert into call_records (id, company_id, user_id, call_date, outcome, notes)
values ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)
returning created_at`,
		c.ID, c.CompanyID, c.UserID, c.CallDate.UTC(), outcome, c.Notes).Scan(&c.CreatedAt)
	if err != nil {
		return domain.Call{}, perr.FromPostgres(err, "insert call record")
	}
	return c, nil
}

func (r *queries) TouchCompany(ctx context.Context, id string, at time.Time, spectro string) error {
	var sp *string
	if spectro != "" {
		sp = &spectro
	}
	tag, err := r.q.Exec(ctx, `
update companies
   set total_calls = total_calls + 1,
       last_contact_at = $2,
       spectro = coalesce($3, spectro)
 where id = $1::uuid`, id, at.UTC(), sp)
	if err != nil {
		return perr.FromPostgres(err, "touch company")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("company %s not found", id)
	}
	return nil
}

func (r *queries) Between(ctx context.Context, userID string, from, to time.Time) ([]domain.TodayCall, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.TodayCall, error) {
		var (
			c       domain.TodayCall
			outcome *string
		)
		err := row.Scan(&c.ID, &c.CallDate, &outcome, &c.Notes,
			&c.CompanyID, &c.CompanyName, &c.Person, &c.Phone, &c.City)
		if outcome != nil {
			c.Outcome = *outcome
		}
		return c, err
	}, `
select c.id::text, c.call_date, c.outcome, c.notes,
       co.id::text, co.company_name, co.person, co.phone, co.city
  from call_records c
  join companies co on co.id = c.company_id
 where c.user_id = $1::uuid and c.call_date >= $2 and c.call_date < $3
 order by c.call_date desc, c.created_at desc`, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, perr.FromPostgres(err, "calls between")
	}
	return out, nil
}
