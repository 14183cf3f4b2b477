// Package http provides http transport for the call history
package http

import (
	stdhttp "net/http"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/history/domain"
)

// Register mounts history endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, clock calday.Clock) {
	h := &handlers{svc: s, clock: clock}

	httpkit.Get(r, "/calendar", h.calendar)
	httpkit.Get(r, "/stats", h.stats)
	httpkit.PostJSON[domain.TodayInput](r, "/today", h.today)
}

type handlers struct {
	svc   domain.ServicePort
	clock calday.Clock
}

// userParam is the user_id query parameter, defaulting to the session user
func userParam(r *stdhttp.Request) (string, error) {
	if id := httpkit.Query(r, "user_id", ""); id != "" {
		return id, nil
	}
	return httpkit.User(r)
}

// @Summary Month calendar of daily results
// @Tags History
// @Produce json
// @Param user_id query string false "User id, defaults to the session user"
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} domain.Calendar
// @Router /history/calendar [get]
func (h *handlers) calendar(r *stdhttp.Request) (any, error) {
	uid, err := userParam(r)
	if err != nil {
		return nil, err
	}
	year, err := httpkit.QueryInt(r, "year", 0)
	if err != nil {
		return nil, err
	}
	month, err := httpkit.QueryInt(r, "month", 0)
	if err != nil {
		return nil, err
	}
	q := domain.CalendarQuery{UserID: uid, Year: year, Month: month}
	if err := httpkit.Validate(q); err != nil {
		return nil, err
	}
	return h.svc.Calendar(r.Context(), q)
}

// @Summary Streak and success summary
// @Tags History
// @Produce json
// @Param user_id query string false "User id, defaults to the session user"
// @Success 200 {object} domain.Stats
// @Router /history/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	uid, err := userParam(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Stats(r.Context(), uid)
}

// @Summary Ensure today's history row exists
// @Tags History
// @Accept json
// @Produce json
// @Param payload body domain.TodayInput true "User, empty object for the session user"
// @Success 200 {object} domain.CalendarDay
// @Router /history/today [post]
func (h *handlers) today(r *stdhttp.Request, in domain.TodayInput) (any, error) {
	uid := in.UserID
	if uid == "" {
		var err error
		if uid, err = httpkit.User(r); err != nil {
			return nil, err
		}
	}
	return h.svc.EnsureDay(r.Context(), uid, calday.Now(h.clock))
}
