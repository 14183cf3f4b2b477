// Package module wires the daily report into the API using modkit
package module

import (
	"time"

	"callcrm/internal/modkit"
	"callcrm/internal/modkit/httpkit"
	"callcrm/internal/services/report/domain"
	"callcrm/internal/services/report/guardrails"
	reporthttp "callcrm/internal/services/report/http"
	"callcrm/internal/services/report/mailer"
	reportrepo "callcrm/internal/services/report/repo"
	reportsvc "callcrm/internal/services/report/service"
	userdom "callcrm/internal/services/users/domain"
)

// Ports exported by the report module
type Ports struct {
	Sender domain.SenderPort
}

// Deps are the ports the report needs
type Deps struct {
	Users userdom.Reader

	// Mailer overrides the mailer built from RESEND_API_KEY
	Mailer mailer.Mailer
}

// Module implements the report module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	users userdom.Reader
	opts  Options
	svc   *reportsvc.Svc
	ports Ports
}

// New constructs the report module; pass modkit.WithPorts(Deps{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build([]modkit.Option{modkit.WithName("report"), modkit.WithPrefix("/reports")}, opts...)
	in, ok := b.Ports.(Deps)
	if !ok || in.Users == nil {
		panic("report module requires modkit.WithPorts(module.Deps{Users: ...})")
	}
	o := FromConfig(deps.Cfg)

	mail := in.Mailer
	if mail == nil {
		mail = mailer.New(o.APIKey, o.From)
	}
	svc := reportsvc.New(deps.PG, reportrepo.NewPG(), in.Users, mail, deps.ClockOrSystem(), reportsvc.Config{
		Recipients: o.Recipients,
		Hour:       o.Hour,
		Minute:     o.Minute,
	})
	svc.Lease = guardrails.MakeLease(deps.PG, "report", 20*time.Hour)
	return &Module{deps: deps, built: b, users: in.Users, opts: o, svc: svc, ports: Ports{Sender: svc}}
}

// Enabled reports whether the worker should run in this process
func (m *Module) Enabled() bool { return m.opts.Enabled }

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.Mount(r, m.built, func(rr httpkit.Router) {
		reporthttp.Register(rr, m.svc, m.users, m.deps.ClockOrSystem(), m.opts.AllowTest)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
