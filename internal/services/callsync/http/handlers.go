// Package http exposes the manual call sync trigger
package http

import (
	stdhttp "net/http"

	"callcrm/internal/modkit/httpkit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/services/callsync/domain"
	userdom "callcrm/internal/services/users/domain"
	usershttp "callcrm/internal/services/users/http"
)

// Register mounts sync endpoints on the given router
func Register(r httpkit.Router, s domain.RunnerPort, users userdom.Reader) {
	h := &handlers{svc: s, users: users}

	httpkit.Post(r, "/run", h.run)
	httpkit.Get(r, "/status", h.status)
}

type handlers struct {
	svc   domain.RunnerPort
	users userdom.Reader
}

// @Summary Run the call sync now
// @Tags Sync
// @Produce json
// @Success 200 {object} domain.RunResult
// @Failure 409 {object} httpkit.Envelope
// @Router /sync/run [post]
func (h *handlers) run(r *stdhttp.Request) (any, error) {
	if _, err := usershttp.RequireAdmin(r, h.users); err != nil {
		return nil, err
	}
	res, err := h.svc.RunOnce(r.Context())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "call sync failed")
	}
	if res.Skipped {
		return nil, perr.Conflictf("call sync already running")
	}
	return res, nil
}

// @Summary Call sync state
// @Tags Sync
// @Produce json
// @Success 200 {object} domain.Status
// @Router /sync/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.svc.Status(), nil
}
