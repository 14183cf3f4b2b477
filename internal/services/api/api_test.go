package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"callcrm/internal/modkit"
	"callcrm/internal/modkit/module"
	"callcrm/internal/modkit/repokit"
	"callcrm/internal/platform/config"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	phttp "callcrm/internal/platform/net/http"
	"callcrm/internal/platform/net/middleware"
	"callcrm/internal/platform/store"
	kit "callcrm/internal/platform/testkit"
	syncmod "callcrm/internal/services/callsync/module"
	userdom "callcrm/internal/services/users/domain"

	"github.com/go-chi/chi/v5"
)

type fakeUsers map[string]userdom.User

func (f fakeUsers) Get(_ context.Context, id string) (userdom.User, error) {
	u, ok := f[id]
	if !ok {
		return userdom.User{}, perr.NotFoundf("user %s not found", id)
	}
	return u, nil
}

func (f fakeUsers) Active(context.Context) ([]userdom.User, error) { return nil, nil }

func session(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(`{"id":"` + id + `"}`))
}

func TestSessionPort(t *testing.T) {
	p := SessionPort(fakeUsers{
		"on":  {ID: "on", IsActive: true},
		"off": {ID: "off"},
	})
	for id, ok := range map[string]bool{"on": true, "off": false, "ghost": false} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(middleware.SessionHeader, session(id))
		uid, err := p.Parse(r)
		if ok && (err != nil || uid != id) {
			t.Fatalf("%s: uid=%q err=%v", id, uid, err)
		}
		if !ok && !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			t.Fatalf("%s: err = %v", id, err)
		}
	}
}

func TestBuildWiresEveryModule(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	app := Build(modkit.Deps{Cfg: config.New(), PG: &repokit.FakeTx{}})

	names := map[string]bool{}
	for _, m := range app.Modules() {
		names[m.Name()] = true
	}
	for _, want := range []string{"users", "history", "ledger", "calls", "callsync", "lifecycle", "report"} {
		if !names[want] {
			t.Fatalf("module %s missing: %v", want, names)
		}
	}
	if _, ok := module.PortsAs[syncmod.Ports]("callsync"); !ok {
		t.Fatalf("callsync ports not registered")
	}
	if len(app.Workers()) != 3 {
		t.Fatalf("workers = %d", len(app.Workers()))
	}
}

func TestMountRequiresSession(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), Options{
		Config: config.New(),
		Store:  &store.Store{PG: &repokit.FakeTx{}},
		Logger: logger.Get(),
	})

	for _, path := range []string{"/api/v1/users/me", "/api/v1/calls/today", "/api/v1/history/stats", "/api/v1/sync/status"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without session = %d", path, rec.Code)
		}
	}

	// the fake store cannot load users, so a well-formed session is still rejected
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set(middleware.SessionHeader, session("6f9a2c1e-0d4b-4a51-9d7e-3b2a1c0f9e11"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user = %d", rec.Code)
	}
	kit.MustContain(t, rec.Body.String(), "invalid user session")
}
