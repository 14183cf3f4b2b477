// Package http exposes the report test trigger
package http

import (
	stdhttp "net/http"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/httpkit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/services/report/domain"
	userdom "callcrm/internal/services/users/domain"
	usershttp "callcrm/internal/services/users/http"
)

// Register mounts report endpoints. The test trigger is only mounted when
// allowTest is set.
func Register(r httpkit.Router, s domain.SenderPort, users userdom.Reader, clock calday.Clock, allowTest bool) {
	h := &handlers{svc: s, users: users, clock: clock}
	if allowTest {
		httpkit.Post(r, "/daily/test", h.test)
		return
	}
	httpkit.Post(r, "/daily/test", func(*stdhttp.Request) (any, error) {
		return nil, perr.Forbiddenf("test endpoint not available in production")
	})
}

type handlers struct {
	svc   domain.SenderPort
	users userdom.Reader
	clock calday.Clock
}

// @Summary Send today's report now
// @Tags Reports
// @Produce json
// @Success 200 {object} domain.Report
// @Failure 403 {object} httpkit.Envelope
// @Router /reports/daily/test [post]
func (h *handlers) test(r *stdhttp.Request) (any, error) {
	if _, err := usershttp.RequireAdmin(r, h.users); err != nil {
		return nil, err
	}
	return h.svc.SendDaily(r.Context(), calday.Now(h.clock))
}
