package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/httpkit"
	phttp "callcrm/internal/platform/net/http"
	"callcrm/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

func TestBuildOrder(t *testing.T) {
	b := Build(
		[]Option{WithName("calls"), WithPrefix("/calls")},
		WithPrefix("/v2/calls"),
		WithPorts("port"),
	)
	if b.Name != "calls" || b.Prefix != "/v2/calls" || b.Ports != "port" {
		t.Fatalf("Build = %+v", b)
	}
}

func TestMountAppliesMiddlewareAndExtras(t *testing.T) {
	var order []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw")
			next.ServeHTTP(w, r)
		})
	}
	b := Build([]Option{WithPrefix("/history"), WithMiddlewares(mw)},
		WithRegister(func(r httpkit.Router) {
			httpkit.Get(r, "/extra", func(*http.Request) (any, error) { return "extra", nil })
		}))

	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), b, func(r httpkit.Router) {
		httpkit.Get(r, "/stats", func(*http.Request) (any, error) {
			order = append(order, "handler")
			return nil, nil
		})
	})

	for _, p := range []string{"/history/stats", "/history/extra"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s = %d", p, rec.Code)
		}
	}
	if len(order) != 3 || order[0] != "mw" || order[1] != "handler" {
		t.Fatalf("order = %v", order)
	}
}

func TestDepsClock(t *testing.T) {
	if _, ok := (Deps{Cfg: config.New()}).ClockOrSystem().(calday.SystemClock); !ok {
		t.Fatalf("nil clock should fall back to system")
	}
	fixed := calday.ClockFunc(func() time.Time { return time.Unix(0, 0) })
	if got := (Deps{Clock: fixed}).ClockOrSystem().Now(); !got.Equal(time.Unix(0, 0)) {
		t.Fatalf("injected clock ignored")
	}
}
