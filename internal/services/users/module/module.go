// Package module wires users into the API using modkit
package module

import (
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/users/domain"
	usershttp "callcrm/internal/services/users/http"
	usersrepo "callcrm/internal/services/users/repo"
	userssvc "callcrm/internal/services/users/service"
)

// Ports exported by the users module
type Ports struct {
	Users domain.ServicePort
}

// Module implements the users module
type Module struct {
	built modkit.Built
	svc   *userssvc.Svc
	ports Ports
}

// New constructs the users module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("users"), modkit.WithPrefix("/users")}, opts...)
	o := FromConfig(deps.Cfg)

	svc := userssvc.New(deps.PG, usersrepo.NewPG(), deps.ClockOrSystem(), userssvc.Config{
		DefaultTarget: o.DefaultTarget,
	})
	return &Module{built: b, svc: svc, ports: Ports{Users: svc}}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.Mount(r, m.built, func(rr httpkit.Router) { usershttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
