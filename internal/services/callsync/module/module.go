// Package module wires the call sync job into the API using modkit
package module

import (
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/callsync/domain"
	synchttp "callcrm/internal/services/callsync/http"
	syncrepo "callcrm/internal/services/callsync/repo"
	syncsvc "callcrm/internal/services/callsync/service"
	histdom "callcrm/internal/services/history/domain"
	ledgerdom "callcrm/internal/services/ledger/domain"
	userdom "callcrm/internal/services/users/domain"
)

// Ports exported by the callsync module
type Ports struct {
	Runner domain.RunnerPort
}

// Deps are the ports the sync job reads and repairs
type Deps struct {
	Users   userdom.Reader
	History histdom.Applier
	Ledger  ledgerdom.Appender
}

// Module implements the callsync module
type Module struct {
	built modkit.Built
	users userdom.Reader
	opts  Options
	svc   *syncsvc.Svc
	ports Ports
}

// New constructs the callsync module; pass modkit.WithPorts(Deps{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("callsync"), modkit.WithPrefix("/sync")}, opts...)
	in, ok := b.Ports.(Deps)
	if !ok || in.Users == nil || in.History == nil {
		panic("callsync module requires modkit.WithPorts(module.Deps{Users, History})")
	}
	o := FromConfig(deps.Cfg)

	svc := syncsvc.New(deps.PG, syncrepo.NewPG(), syncsvc.Deps{
		Users:   in.Users,
		History: in.History,
		Ledger:  in.Ledger,
	}, deps.ClockOrSystem(), syncsvc.Config{
		Interval: o.Interval,
		Overlap:  o.Overlap,
		Lookback: o.Lookback,
	})
	return &Module{built: b, users: in.Users, opts: o, svc: svc, ports: Ports{Runner: svc}}
}

// Enabled reports whether the worker should run in this process
func (m *Module) Enabled() bool { return m.opts.Enabled }

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.Mount(r, m.built, func(rr httpkit.Router) { synchttp.Register(rr, m.svc, m.users) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
