// Package api assembles the service modules into the HTTP API and the
// background workers
package api

import (
	"context"
	"net/http"

	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/modkit/module"
	"callcrm/internal/modkit/swaggerkit"
	"callcrm/internal/platform/config"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	phttp "callcrm/internal/platform/net/http"
	"callcrm/internal/platform/net/middleware"
	"callcrm/internal/platform/store"
	userdom "callcrm/internal/services/users/domain"
)

// Options are the API options
type Options struct {
	// Config is the root view; modules read their own prefixes from it
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	CORS           middleware.CORSOptions
}

// Mount builds every module and mounts the versioned API on r. The returned
// App carries the workers the caller should start.
func Mount(r phttp.Router, opt Options) *App {
	app := Build(modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	})

	mw := append(httpkit.CommonStack(opt.CORS), httpkit.Auth(SessionPort(app.UsersPort())))

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, mw, func(api httpkit.Router) {
		for _, m := range app.Modules() {
			m.MountRoutes(api)
		}
	})
	return app
}

var errInactive = perr.Forbiddenf("user is not active")

// SessionPort accepts sessions of existing active users only
func SessionPort(users userdom.Reader) *httpkit.Port {
	return httpkit.NewSessionPort(func(r *http.Request, userID string) error {
		u, err := users.Get(r.Context(), userID)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return errInactive
		}
		return nil
	})
}

// Run starts every enabled worker and blocks until ctx ends or a worker
// fails
func (a *App) Run(ctx context.Context) error {
	return a.runWorkers(ctx, a.Workers())
}

// registerPorts exposes each module's ports to background lookups
func registerPorts(mods []module.Module) {
	for _, m := range mods {
		module.Register(m.Name(), m.Ports())
	}
}
