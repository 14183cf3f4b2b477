// @title         CallCRM API
// @version       0.1.0
// @description   Call logging, daily targets and streaks

package main

import (
	"context"
	"os/signal"
	"syscall"

	"callcrm/internal/modkit/repokit"
	"callcrm/internal/platform/config"
	"callcrm/internal/platform/logger"
	phttp "callcrm/internal/platform/net/http"
	"callcrm/internal/platform/net/middleware"
	"callcrm/internal/platform/store"
	"callcrm/internal/platform/store/schema"

	"callcrm/internal/services/api"

	"golang.org/x/sync/errgroup"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stCfg := store.FromEnv(root)
	st, err := store.Open(ctx, stCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	if stCfg.PG.Migrate {
		n, err := schema.Apply(ctx, st.PG)
		if err != nil {
			l.Panic().Err(err).Msg("schema.Apply failed")
		}
		l.Info().Int("applied", n).Msg("schema up to date")
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	app := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			CORS: middleware.CORSOptions{
				AllowedOrigins:   apiCfg.MayCSV("CORS_ORIGINS", nil),
				AllowCredentials: apiCfg.MayBool("CORS_CREDENTIALS", false),
				MaxAge:           300,
			},
		},
	)

	// the server and the workers share one process and stop together
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return app.Run(gctx) })

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("callcrm-api stopped with error")
		return
	}
	l.Info().Msg("callcrm-api stopped")
}
