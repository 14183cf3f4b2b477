package api

import (
	"context"
	"errors"

	"callcrm/internal/modkit"
	"callcrm/internal/modkit/module"
	"callcrm/internal/platform/logger"
	callsmod "callcrm/internal/services/calls/module"
	syncdom "callcrm/internal/services/callsync/domain"
	syncmod "callcrm/internal/services/callsync/module"
	histmod "callcrm/internal/services/history/module"
	ledgermod "callcrm/internal/services/ledger/module"
	lcdom "callcrm/internal/services/lifecycle/domain"
	lcmod "callcrm/internal/services/lifecycle/module"
	reportdom "callcrm/internal/services/report/domain"
	reportmod "callcrm/internal/services/report/module"
	userdom "callcrm/internal/services/users/domain"
	usersmod "callcrm/internal/services/users/module"

	"golang.org/x/sync/errgroup"
)

// App is the wired set of modules
type App struct {
	Users     *usersmod.Module
	History   *histmod.Module
	Ledger    *ledgermod.Module
	Calls     *callsmod.Module
	Sync      *syncmod.Module
	Lifecycle *lcmod.Module
	Report    *reportmod.Module
}

// Worker is a named background loop
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

// Build constructs every module in dependency order and registers their
// ports
func Build(deps modkit.Deps) *App {
	users := usersmod.New(deps)
	usersPort := module.MustPortsOf[usersmod.Ports](users).Users

	history := histmod.New(deps, modkit.WithPorts(histmod.Deps{Users: usersPort}))
	ledger := ledgermod.New(deps, modkit.WithPorts(ledgermod.Deps{Users: usersPort}))
	historyPort := module.MustPortsOf[histmod.Ports](history).History
	ledgerPort := module.MustPortsOf[ledgermod.Ports](ledger).Ledger

	app := &App{
		Users:   users,
		History: history,
		Ledger:  ledger,
		Calls: callsmod.New(deps, modkit.WithPorts(callsmod.Deps{
			Users:   usersPort,
			History: historyPort,
			Ledger:  ledgerPort,
		})),
		Sync: syncmod.New(deps, modkit.WithPorts(syncmod.Deps{
			Users:   usersPort,
			History: historyPort,
			Ledger:  ledgerPort,
		})),
		Lifecycle: lcmod.New(deps, modkit.WithPorts(lcmod.Deps{
			Users:  usersPort,
			Ledger: ledgerPort,
		})),
		Report: reportmod.New(deps, modkit.WithPorts(reportmod.Deps{Users: usersPort})),
	}
	registerPorts(app.Modules())
	return app
}

// Modules lists the modules in mount order
func (a *App) Modules() []module.Module {
	return []module.Module{a.Users, a.History, a.Ledger, a.Calls, a.Sync, a.Lifecycle, a.Report}
}

// UsersPort returns the users service
func (a *App) UsersPort() userdom.ServicePort {
	return module.MustPortsOf[usersmod.Ports](a.Users).Users
}

// SyncRunner returns the call sync job
func (a *App) SyncRunner() syncdom.RunnerPort {
	return module.MustPortsOf[syncmod.Ports](a.Sync).Runner
}

// LifecycleRunner returns the daily record lifecycle manager
func (a *App) LifecycleRunner() lcdom.RunnerPort {
	return module.MustPortsOf[lcmod.Ports](a.Lifecycle).Runner
}

// ReportSender returns the daily report sender
func (a *App) ReportSender() reportdom.SenderPort {
	return module.MustPortsOf[reportmod.Ports](a.Report).Sender
}

// Workers lists the background loops enabled by config
func (a *App) Workers() []Worker {
	var ws []Worker
	if a.Sync.Enabled() {
		ws = append(ws, Worker{Name: "callsync", Run: a.SyncRunner().Run})
	}
	if a.Lifecycle.Enabled() {
		ws = append(ws, Worker{Name: "lifecycle", Run: a.LifecycleRunner().Run})
	}
	if a.Report.Enabled() {
		ws = append(ws, Worker{Name: "report", Run: a.ReportSender().Run})
	}
	return ws
}

func (a *App) runWorkers(ctx context.Context, ws []Worker) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range ws {
		g.Go(func() error {
			logger.Named(w.Name).Info().Msg("worker: starting")
			err := w.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
