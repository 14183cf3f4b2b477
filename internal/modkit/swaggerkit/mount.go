// Package swaggerkit serves Swagger UI over the hand-kept OpenAPI document
package swaggerkit

import (
	_ "embed"
	"net/http"

	phttp "callcrm/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed doc.json
var docJSON []byte

// Mount serves the UI under /api/docs and the document at /api/docs/doc.json when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(docJSON)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
