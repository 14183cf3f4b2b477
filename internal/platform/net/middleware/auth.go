package middleware

import (
	"net/http"

	pnet "callcrm/internal/platform/net"
)

// SessionHeader carries the frontend's session token
const SessionHeader = "X-User-Session"

// AuthPort resolves the acting user from a request
type AuthPort interface {
	Parse(r *http.Request) (userID string, err error)
}

// Auth rejects requests the port cannot resolve and stores the user id on the
// context otherwise. A nil port lets everything through.
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
