// Package module wires the daily record lifecycle manager as a modkit.Module
package module

import (
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	ledgerdom "callcrm/internal/services/ledger/domain"
	"callcrm/internal/services/lifecycle/domain"
	lcsvc "callcrm/internal/services/lifecycle/service"
	userdom "callcrm/internal/services/users/domain"
)

// Ports exported by the lifecycle module
type Ports struct {
	Runner domain.RunnerPort
}

// Deps are the ports the lifecycle manager needs
type Deps struct {
	Users  userdom.Reader
	Ledger ledgerdom.Ensurer
}

// Module implements modkit.Module for the lifecycle manager
type Module struct {
	built modkit.Built
	opts  Options
	ports Ports
}

// New constructs the lifecycle module; pass modkit.WithPorts(Deps{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("lifecycle")}, opts...)
	in, ok := b.Ports.(Deps)
	if !ok || in.Users == nil || in.Ledger == nil {
		panic("lifecycle module requires modkit.WithPorts(module.Deps{Users, Ledger})")
	}
	o := FromConfig(deps.Cfg)

	svc := lcsvc.New(in.Users, in.Ledger, deps.ClockOrSystem(), lcsvc.Config{Workers: o.Workers})
	return &Module{built: b, opts: o, ports: Ports{Runner: svc}}
}

// Enabled reports whether the worker should run in this process
func (m *Module) Enabled() bool { return m.opts.Enabled }

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: the lifecycle manager has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
