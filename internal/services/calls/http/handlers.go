// Package http provides http transport for call logging
package http

import (
	stdhttp "net/http"

	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/calls/domain"
	userdom "callcrm/internal/services/users/domain"
	usershttp "callcrm/internal/services/users/http"
)

// Register mounts call endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, users userdom.Reader) {
	h := &handlers{svc: s, users: users}

	httpkit.PostJSON[domain.LogInput](r, "/", h.log)
	httpkit.Get(r, "/today", h.today)
}

type handlers struct {
	svc   domain.ServicePort
	users userdom.Reader
}

// @Summary Log a call
// @Description Stores the call for the session user, then updates the company, the user counter and the daily stores.
// @Description Only admins may log a call for another userId.
// @Tags Calls
// @Accept json
// @Produce json
// @Param payload body domain.LogInput true "Call"
// @Success 201 {object} domain.LogResult
// @Failure 400 {object} httpkit.Envelope
// @Failure 403 {object} httpkit.Envelope
// @Router /calls [post]
func (h *handlers) log(r *stdhttp.Request, in domain.LogInput) (any, error) {
	uid, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	switch in.UserID {
	case "", uid:
		in.UserID = uid
	default:
		if _, err := usershttp.RequireAdmin(r, h.users); err != nil {
			return nil, err
		}
	}
	res, err := h.svc.Log(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(res), nil
}

// @Summary Today's calls of the session user
// @Tags Calls
// @Produce json
// @Success 200 {object} domain.TodayList
// @Router /calls/today [get]
func (h *handlers) today(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Today(r.Context(), uid)
}
