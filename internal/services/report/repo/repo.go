// Package repo reads a day's calls for the report
package repo

import (
	"context"
	"time"

	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/store"
)

// Row is one call with its company name
type Row struct {
	UserID      string
	CompanyName string
	Outcome     string
	CallDate    time.Time
}

// Repo is the read surface of the report
type Repo interface {
	// CallsBetween lists calls with call_date in [from, to), newest first.
	// Outcome is empty for calls without one.
	CallsBetween(ctx context.Context, from, to time.Time) ([]Row, error)
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

func (r *queries) CallsBetween(ctx context.Context, from, to time.Time) ([]Row, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (Row, error) {
		var x Row
		err := row.Scan(&x.UserID, &x.CompanyName, &x.Outcome, &x.CallDate)
		return x, err
	}, `
select c.user_id::text, coalesce(co.company_name, ''), coalesce(c.outcome, ''), c.call_date
  from call_records c
  left join companies co on co.id = c.company_id
 where c.call_date >= $1 and c.call_date < $2
 order by c.call_date desc, c.id`, from.UTC(), to.UTC())
	if err != nil {
		return nil, perr.FromPostgres(err, "report calls")
	}
	return out, nil
}
