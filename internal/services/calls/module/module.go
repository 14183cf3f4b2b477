// Package module wires call logging into the API using modkit
package module

import (
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/calls/domain"
	callshttp "callcrm/internal/services/calls/http"
	callsrepo "callcrm/internal/services/calls/repo"
	callssvc "callcrm/internal/services/calls/service"
	histdom "callcrm/internal/services/history/domain"
	ledgerdom "callcrm/internal/services/ledger/domain"
)

// Ports exported by the calls module
type Ports struct {
	Calls domain.ServicePort
}

// Deps are the ports the calls module feeds on every resulted call
type Deps struct {
	Users   callssvc.Users
	History histdom.Applier
	Ledger  ledgerdom.Appender
}

// Module implements the calls module
type Module struct {
	built modkit.Built
	svc   *callssvc.Svc
	users callssvc.Users
	ports Ports
}

// New constructs the calls module; pass modkit.WithPorts(Deps{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("calls"), modkit.WithPrefix("/calls")}, opts...)
	in, ok := b.Ports.(Deps)
	if !ok || in.Users == nil || in.History == nil || in.Ledger == nil {
		panic("calls module requires modkit.WithPorts(module.Deps{Users, History, Ledger})")
	}

	svc := callssvc.New(deps.PG, callsrepo.NewPG(), callssvc.Deps{
		Users:   in.Users,
		History: in.History,
		Ledger:  in.Ledger,
	}, deps.ClockOrSystem())
	return &Module{built: b, svc: svc, users: in.Users, ports: Ports{Calls: svc}}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.Mount(r, m.built, func(rr httpkit.Router) { callshttp.Register(rr, m.svc, m.users) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
