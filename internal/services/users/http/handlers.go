// Package http provides http transport for users
package http

import (
	stdhttp "net/http"

	"callcrm/internal/modkit/httpkit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/services/users/domain"
)

// Register mounts user endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/me", h.me)
	httpkit.Get(r, "/overview", h.overview)
	httpkit.PutJSON[domain.TargetInput](r, "/{id}/target", h.setTarget)
}

type handlers struct{ svc domain.ServicePort }

// RequireAdmin loads the session user and rejects non admins
func RequireAdmin(r *stdhttp.Request, users domain.Reader) (domain.User, error) {
	uid, err := httpkit.User(r)
	if err != nil {
		return domain.User{}, err
	}
	u, err := users.Get(r.Context(), uid)
	if err != nil {
		return domain.User{}, err
	}
	if !u.IsAdmin() {
		return domain.User{}, perr.Forbiddenf("admin only")
	}
	return u, nil
}

// @Summary Session user profile
// @Description Zeroes a daily counter left over from an earlier day before returning
// @Tags Users
// @Produce json
// @Success 200 {object} domain.Profile
// @Router /users/me [get]
func (h *handlers) me(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Profile(r.Context(), uid)
}

// @Summary Per-user totals for today
// @Tags Users
// @Produce json
// @Success 200 {array} domain.OverviewRow
// @Failure 403 {object} httpkit.Envelope
// @Router /users/overview [get]
func (h *handlers) overview(r *stdhttp.Request) (any, error) {
	if _, err := RequireAdmin(r, h.svc); err != nil {
		return nil, err
	}
	return h.svc.Overview(r.Context())
}

// @Summary Set a user's daily call target
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body domain.TargetInput true "Target"
// @Success 204
// @Router /users/{id}/target [put]
func (h *handlers) setTarget(r *stdhttp.Request, in domain.TargetInput) (any, error) {
	if _, err := RequireAdmin(r, h.svc); err != nil {
		return nil, err
	}
	if err := h.svc.SetTarget(r.Context(), httpkit.Param(r, "id"), in.Target); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
