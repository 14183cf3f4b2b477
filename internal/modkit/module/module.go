// Package module is the minimal module contract plus a bootstrap port registry
package module

import (
	phttp "callcrm/internal/platform/net/http"
)

// Module mounts routes and exposes a port set for cross wiring
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
