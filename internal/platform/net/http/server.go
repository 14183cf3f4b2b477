package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"callcrm/internal/platform/config"
	"callcrm/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server wraps a chi mux in an http.Server with sane timeouts
type Server struct {
	mux *chi.Mux
	srv *stdhttp.Server
}

// NewServer reads CORE_API_API_PORT (default 4000) from cfg
func NewServer(cfg config.Conf) *Server {
	addr := ":4000"
	if cfg.MayString("API_PORT", "") != "" {
		addr = cfg.MustPort("API_PORT")
	}
	m := chi.NewRouter()
	return &Server{
		mux: m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// Router exposes the mux through the Router seam
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler returns the root handler, for tests
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the listen address
func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is cancelled, then drains for up to 15s
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("http: listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info().Msg("http: shutting down")
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}
