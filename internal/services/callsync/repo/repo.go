// Package repo reads the call log for reconciliation
package repo

import (
	"context"
	"time"

	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/store"
	"callcrm/internal/services/callsync/domain"
)

// Repo is the read surface the reconciliation job needs
type Repo interface {
	// ResultedSince lists calls with an outcome created at or after since
	ResultedSince(ctx context.Context, since time.Time) ([]domain.Call, error)
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

func (r *queries) ResultedSince(ctx context.Context, since time.Time) ([]domain.Call, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Call, error) {
		var c domain.Call
		err := row.Scan(&c.ID, &c.UserID, &c.CompanyID, &c.Outcome, &c.CallDate)
		return c, err
	}, `
select id::text, user_id::text, company_id::text, outcome, call_date
  from call_records
 where outcome is not null and created_at >= $1
 order by created_at asc, id asc`, since.UTC())
	if err != nil {
		return nil, perr.FromPostgres(err, "resulted calls since")
	}
	return out, nil
}
