// Package module wires the call history into the API using modkit
package module

import (
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/history/domain"
	historyhttp "callcrm/internal/services/history/http"
	historyrepo "callcrm/internal/services/history/repo"
	historysvc "callcrm/internal/services/history/service"
	userdom "callcrm/internal/services/users/domain"
)

// Ports exported by the history module
type Ports struct {
	History domain.ServicePort
}

// Deps are the ports the history module needs from other modules
type Deps struct {
	Users userdom.Reader
}

// Module implements the history module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	svc   *historysvc.Svc
	ports Ports
}

// New constructs the history module. The users reader comes in through
// modkit.WithPorts(Deps{...}).
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("history"), modkit.WithPrefix("/history")}, opts...)
	in, ok := b.Ports.(Deps)
	if !ok || in.Users == nil {
		panic("history module requires modkit.WithPorts(module.Deps{Users: ...})")
	}

	svc := historysvc.New(deps.PG, historyrepo.NewPG(), in.Users, deps.ClockOrSystem())
	return &Module{deps: deps, built: b, svc: svc, ports: Ports{History: svc}}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.Mount(r, m.built, func(rr httpkit.Router) {
		historyhttp.Register(rr, m.svc, m.deps.ClockOrSystem())
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
