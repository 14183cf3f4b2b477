package http

import "net/http"

// Handler is the handler shape every route uses
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing surface modules mount against, so they never see chi directly.
// It carries only the verbs the call and user APIs register.
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Put(path string, h Handler)

	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Route(pattern string, fn func(Router))
}
