package httpkit

import "net/http"

// MountAPIV1 mounts a subrouter under /api/v1, applies the scope middleware,
// then lets mount register routes on it
//
// example:
//
//	httpkit.MountAPIV1(r, httpkit.CommonStack(cors), func(api httpkit.Router) {
//	  calls.MountRoutes(api)
//	})
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/v1", func(api Router) {
		if len(mw) > 0 {
			api.Use(mw...)
		}
		mount(api)
	})
}
