// Command callcrm-ops runs one maintenance pass against the database and
// prints its result as JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit"
	"callcrm/internal/modkit/module"
	"callcrm/internal/modkit/repokit"
	"callcrm/internal/platform/config"
	"callcrm/internal/platform/logger"
	"callcrm/internal/platform/store"
	"callcrm/internal/platform/store/schema"

	"callcrm/internal/services/api"
	ledgermod "callcrm/internal/services/ledger/module"
)

func main() { os.Exit(run()) }

func run() int {
	var (
		fMode    = flag.String("mode", "", "sync | ensure | backfill | report | migrate")
		fDate    = flag.String("date", "", "Istanbul day YYYY-MM-DD for ensure, backfill and report; default today")
		fMigrate = flag.Bool("migrate", false, "apply the embedded schema before running")
	)
	flag.Parse()

	switch *fMode {
	case "sync", "ensure", "backfill", "report", "migrate":
	default:
		flag.Usage()
		return 2
	}

	root := config.New()
	l := logger.Get()
	ctx := context.Background()

	clock := calday.SystemClock{}
	day := calday.Now(clock)
	if *fDate != "" {
		d, err := calday.Parse(*fDate)
		if err != nil {
			l.Error().Err(err).Str("date", *fDate).Msg("bad -date, want YYYY-MM-DD")
			return 2
		}
		day = d
	}

	st, err := store.Open(ctx, store.FromEnv(root), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	if *fMigrate || *fMode == "migrate" {
		n, err := schema.Apply(ctx, st.PG)
		if err != nil {
			l.Error().Err(err).Msg("schema.Apply failed")
			return 1
		}
		l.Info().Int("applied", n).Msg("schema up to date")
		if *fMode == "migrate" {
			return 0
		}
	}

	app := api.Build(modkit.Deps{Cfg: root, PG: st.PG, Log: *l, Clock: clock})

	var out any
	switch *fMode {
	case "sync":
		out, err = app.SyncRunner().RunOnce(ctx)
	case "ensure":
		out, err = app.LifecycleRunner().EnsureRecordsForDate(ctx, day)
	case "backfill":
		ledger := module.MustPortsOf[ledgermod.Ports](app.Ledger).Ledger
		out, err = ledger.Backfill(ctx, day)
	case "report":
		out, err = app.ReportSender().SendDaily(ctx, day)
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	}
	if err != nil {
		l.Error().Err(err).Str("mode", *fMode).Msg("callcrm-ops failed")
		return 1
	}
	return 0
}
