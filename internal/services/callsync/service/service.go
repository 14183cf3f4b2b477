// Package service runs the call sync: a periodic sweep that counts resulted
// calls the synchronous pipeline missed into the call history
package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/platform/logger"
	"callcrm/internal/services/callsync/domain"
	"callcrm/internal/services/callsync/repo"
	histdom "callcrm/internal/services/history/domain"
	ledgerdom "callcrm/internal/services/ledger/domain"
	userdom "callcrm/internal/services/users/domain"
)

// Config tunes the sweep
type Config struct {
	// Interval between scheduled runs
	Interval time.Duration

	// Overlap is subtracted from the last sync time so slow writes and
	// clock skew are still seen
	Overlap time.Duration

	// Lookback sets the first window: lastSync starts at now - Lookback
	Lookback time.Duration
}

// Deps are the stores the sweep reads and repairs. Ledger is optional.
type Deps struct {
	Users   userdom.Reader
	History histdom.Applier
	Ledger  ledgerdom.Appender
}

// Svc is a single-instance reconciliation job
type Svc struct {
	Repo  repo.Repo
	deps  Deps
	clock calday.Clock
	cfg   Config

	state atomic.Int32

	mu       sync.Mutex
	lastSync time.Time

	// NewTicker is swapped in tests to drive Run without real timers
	NewTicker func(d time.Duration) (<-chan time.Time, func())
}

// New constructs the sync job
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], deps Deps, clock calday.Clock, cfg Config) *Svc {
	if db == nil {
		panic("callsync.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("callsync.Service requires a non nil Repo binder")
	}
	if deps.Users == nil || deps.History == nil {
		panic("callsync.Service requires users and history ports")
	}
	if clock == nil {
		clock = calday.SystemClock{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 2 * time.Minute
	}
	s := &Svc{
		Repo:      binder.Bind(db),
		deps:      deps,
		clock:     clock,
		cfg:       cfg,
		lastSync:  clock.Now().Add(-cfg.Lookback),
		NewTicker: stdTicker,
	}
	return s
}

func stdTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Status reports the job state and the start of the last successful run
func (s *Svc) Status() domain.Status {
	s.mu.Lock()
	last := s.lastSync
	s.mu.Unlock()
	return domain.Status{State: domain.State(s.state.Load()).String(), LastSync: last}
}

type group struct {
	userID string
	day    time.Time
	calls  []domain.Call
}

// RunOnce sweeps the calls created since the last sync minus the overlap.
// A call already counted is never counted again, so a run over an
// overlapping window only adds what is missing. A run started while another
// is in progress returns Skipped. On error lastSync stays put and the next
// run retries the same window.
func (s *Svc) RunOnce(ctx context.Context) (domain.RunResult, error) {
	log := logger.Named("callsync")
	if !s.state.CompareAndSwap(int32(domain.Idle), int32(domain.Running)) {
		log.Info().Msg("callsync: run in progress, skipping")
		return domain.RunResult{Skipped: true}, nil
	}
	defer s.state.Store(int32(domain.Idle))

	start := calday.Now(s.clock)
	s.mu.Lock()
	since := s.lastSync.Add(-s.cfg.Overlap)
	s.mu.Unlock()

	res := domain.RunResult{StartedAt: start, Since: since}
	calls, err := s.Repo.ResultedSince(ctx, since)
	if err != nil {
		log.Error().Err(err).Time("since", since).Msg("callsync: read failed")
		return res, err
	}
	res.Calls = len(calls)

	groups := groupCalls(calls)
	res.Groups = len(groups)

	users := map[string]userdom.User{}
	for _, g := range groups {
		u, ok := users[g.userID]
		if !ok {
			u, err = s.deps.Users.Get(ctx, g.userID)
			if perr.IsCode(err, perr.ErrorCodeNotFound) {
				log.Warn().Str("user_id", g.userID).Msg("callsync: user gone, calls left uncounted")
				continue
			}
			if err != nil {
				return res, err
			}
			users[g.userID] = u
		}

		ids := make([]string, len(g.calls))
		for i, c := range g.calls {
			ids[i] = c.ID
		}
		applied, err := s.deps.History.Apply(ctx, histdom.ApplyInput{
			UserID:        g.userID,
			Day:           g.day,
			CallIDs:       ids,
			Target:        u.TargetOr(userdom.FallbackTarget),
			RefreshTarget: calday.SameDay(g.day, start),
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", g.userID).Str("day", calday.Key(g.day)).Msg("callsync: history apply failed")
			return res, err
		}
		res.Added += applied.Added

		res.LedgerAdded += s.replayLedger(ctx, g, u)
	}

	s.mu.Lock()
	s.lastSync = start
	s.mu.Unlock()

	if res.Added > 0 {
		log.Info().Int("calls", res.Calls).Int("added", res.Added).Int("ledger_added", res.LedgerAdded).Msg("callsync: repaired history")
	} else {
		log.Debug().Int("calls", res.Calls).Msg("callsync: nothing to repair")
	}
	return res, nil
}

// replayLedger appends the group's calls to the user's daily record on
// workdays. Entries are keyed by call id, so replays are no-ops. Failures are
// logged and never fail the run.
func (s *Svc) replayLedger(ctx context.Context, g group, u userdom.User) int {
	if s.deps.Ledger == nil || !calday.IsWorkday(g.day) {
		return 0
	}
	n := 0
	for _, c := range g.calls {
		added, err := s.deps.Ledger.Append(ctx, ledgerdom.AppendInput{
			UserID: g.userID,
			Day:    g.day,
			Target: u.TargetOr(userdom.FallbackTarget),
			Entry: ledgerdom.Entry{
				CallRecordID: c.ID,
				CompanyID:    c.CompanyID,
				Outcome:      c.Outcome,
				CallTime:     c.CallDate,
			},
		})
		if err != nil {
			logger.Named("callsync").Warn().Err(err).
				Str("call_id", c.ID).
				Str("user_id", g.userID).
				Str("step", "ledger").
				Msg("callsync: ledger replay failed")
			continue
		}
		if added {
			n++
		}
	}
	return n
}

// groupCalls buckets calls by user and Istanbul day of the call, in a stable
// order
func groupCalls(calls []domain.Call) []group {
	idx := map[string]int{}
	var out []group
	for _, c := range calls {
		day := calday.Floor(c.CallDate)
		k := c.UserID + "|" + calday.Key(day)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, group{userID: c.UserID, day: day})
		}
		out[i].calls = append(out[i].calls, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].userID != out[j].userID {
			return out[i].userID < out[j].userID
		}
		return out[i].day.Before(out[j].day)
	})
	return out
}

// Run sweeps once immediately and then on every tick until ctx ends. Run
// errors are logged; the next tick retries.
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("callsync")
	log.Info().Dur("interval", s.cfg.Interval).Dur("overlap", s.cfg.Overlap).Msg("callsync: started")

	tick, stop := s.NewTicker(s.cfg.Interval)
	defer stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("callsync: run failed, retrying next tick")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("callsync: stopped")
			return ctx.Err()
		case <-tick:
		}
	}
}
