// Package guardrails keeps scheduled report sends single-shot across replicas
package guardrails

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
)

// ErrLeaseHeld signals another process already claimed the job
var ErrLeaseHeld = errors.New("report: lease already held")

// Lease runs do only when the named lease could be claimed
type Lease func(ctx context.Context, name string, do func(context.Context) error) error

// MakeLease claims rows of job_leases; an expired lease can be reclaimed by
// any owner. Leases are not released, so a claimed name stays taken for ttl.
func MakeLease(db repokit.TxRunner, owner string, ttl time.Duration) Lease {
	owner = fmt.Sprintf("%s:%d", owner, os.Getpid())
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}

	return func(ctx context.Context, name string, do func(context.Context) error) error {
		var claimed bool
		if err := db.Tx(ctx, func(q repokit.Queryer) error {
			err := q.QueryRow(ctx, `
insert into job_leases (name, owner, claimed_at, expires_at)
values ($1, $2, now(), now() + make_interval(secs => $3))
on conflict (name) do update
   set owner = excluded.owner, claimed_at = excluded.claimed_at, expires_at = excluded.expires_at
 where job_leases.expires_at <= now()
returning true`, name, owner, ttl.Seconds()).Scan(&claimed)
			if perr.IsNoRows(err) {
				claimed = false
				return nil
			}
			return err
		}); err != nil {
			return perr.FromPostgres(err, "claim lease")
		}
		if !claimed {
			return ErrLeaseHeld
		}
		return do(ctx)
	}
}
