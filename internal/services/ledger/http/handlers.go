// Package http provides http transport for daily records
package http

import (
	stdhttp "net/http"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/httpkit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/services/ledger/domain"
)

// Register mounts daily record endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, clock calday.Clock) {
	h := &handlers{svc: s, clock: clock}

	httpkit.Get(r, "/today", h.today)
	httpkit.PostJSON[domain.BackfillInput](r, "/backfill", h.backfill)
}

type handlers struct {
	svc   domain.ServicePort
	clock calday.Clock
}

// @Summary Today's daily record with its calls
// @Tags Ledger
// @Produce json
// @Param user_id query string false "User id, defaults to the session user"
// @Success 200 {object} domain.Record
// @Failure 404 {object} httpkit.Envelope
// @Router /ledger/today [get]
func (h *handlers) today(r *stdhttp.Request) (any, error) {
	uid := httpkit.Query(r, "user_id", "")
	if uid == "" {
		var err error
		if uid, err = httpkit.User(r); err != nil {
			return nil, err
		}
	}
	return h.svc.Get(r.Context(), uid, calday.Now(h.clock))
}

// @Summary Rebuild a day's records from the call log
// @Tags Ledger
// @Accept json
// @Produce json
// @Param payload body domain.BackfillInput true "Day"
// @Success 200 {object} domain.BackfillResult
// @Router /ledger/backfill [post]
func (h *handlers) backfill(r *stdhttp.Request, in domain.BackfillInput) (any, error) {
	day, err := calday.Parse(in.Date)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("date must be YYYY-MM-DD"), "date")
	}
	return h.svc.Backfill(r.Context(), day)
}
