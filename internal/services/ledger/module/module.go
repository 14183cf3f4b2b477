// Package module wires daily records into the API using modkit
package module

import (
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/ledger/domain"
	ledgerhttp "callcrm/internal/services/ledger/http"
	ledgerrepo "callcrm/internal/services/ledger/repo"
	ledgersvc "callcrm/internal/services/ledger/service"
	userdom "callcrm/internal/services/users/domain"
)

// Ports exported by the ledger module
type Ports struct {
	Ledger domain.ServicePort
}

// Deps are the ports the ledger module needs from other modules
type Deps struct {
	Users userdom.Reader
}

// Module implements the ledger module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	svc   *ledgersvc.Svc
	ports Ports
}

// New constructs the ledger module; pass modkit.WithPorts(Deps{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("ledger"), modkit.WithPrefix("/ledger")}, opts...)
	in, ok := b.Ports.(Deps)
	if !ok || in.Users == nil {
		panic("ledger module requires modkit.WithPorts(module.Deps{Users: ...})")
	}

	svc := ledgersvc.New(deps.PG, ledgerrepo.NewPG(), in.Users)
	return &Module{deps: deps, built: b, svc: svc, ports: Ports{Ledger: svc}}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.Mount(r, m.built, func(rr httpkit.Router) {
		ledgerhttp.Register(rr, m.svc, m.deps.ClockOrSystem())
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
