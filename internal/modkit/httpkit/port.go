package httpkit

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/net/middleware"
)

// SessionFunc resolves a decoded session user id to a live user; return an
// error to reject it (unknown or inactive user)
type SessionFunc func(r *http.Request, userID string) error

// Port implements middleware.AuthPort over the frontend session header: a
// base64 encoded JSON object with at least an "id" field. A Bearer token of
// the same shape is accepted for non-browser clients.
type Port struct {
	check SessionFunc
}

// NewSessionPort builds a Port; check may be nil to trust any decodable session
func NewSessionPort(check SessionFunc) *Port { return &Port{check: check} }

type session struct {
	ID string `json:"id"`
}

// Parse extracts the user id from X-User-Session or Authorization
func (p *Port) Parse(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
	if raw == "" {
		authz := strings.TrimSpace(r.Header.Get("Authorization"))
		const prefix = "bearer "
		if len(authz) > len(prefix) && strings.ToLower(authz[:len(prefix)]) == prefix {
			raw = strings.TrimSpace(authz[len(prefix):])
		}
	}
	if raw == "" {
		return "", perr.Unauthorizedf("missing user session")
	}

	uid, err := decodeSession(raw)
	if err != nil {
		return "", err
	}
	if p.check != nil {
		if err := p.check(r, uid); err != nil {
			return "", perr.Wrap(err, perr.ErrorCodeUnauthorized, "invalid user session")
		}
	}
	return uid, nil
}

func decodeSession(raw string) (string, error) {
	// browsers send padded std encoding; curl users tend to send raw url encoding
	var b []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err = enc.DecodeString(raw); err == nil {
			break
		}
	}
	if err != nil {
		return "", perr.Unauthorizedf("malformed user session")
	}
	var s session
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s.ID) == "" {
		return "", perr.Unauthorizedf("malformed user session")
	}
	return strings.TrimSpace(s.ID), nil
}
