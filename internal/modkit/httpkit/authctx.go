package httpkit

import (
	"net/http"

	perr "callcrm/internal/platform/errors"
	pnet "callcrm/internal/platform/net"
)

// User returns the session user id from the request context
func User(r *http.Request) (string, error) {
	uid := pnet.UserID(r.Context())
	if uid == "" {
		return "", perr.Unauthorizedf("missing user session")
	}
	return uid, nil
}
