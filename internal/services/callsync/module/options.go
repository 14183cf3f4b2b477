package module

import (
	"time"

	"callcrm/internal/platform/config"
)

// Options for the callsync module
type Options struct {
	Interval time.Duration
	Overlap  time.Duration
	Lookback time.Duration
	Enabled  bool
}

// FromConfig fills options from environment
// CORE_CALLSYNC_INTERVAL (default 60s) is the time between runs
// CORE_CALLSYNC_OVERLAP (default 2m) widens every window backwards
// CORE_CALLSYNC_LOOKBACK (default 2m) is how far the first run looks back
// CORE_CALLSYNC_ENABLED (default true) starts the worker in the api process
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_CALLSYNC_")
	return Options{
		Interval: n.MayDuration("INTERVAL", time.Minute),
		Overlap:  n.MayDuration("OVERLAP", 2*time.Minute),
		Lookback: n.MayDuration("LOOKBACK", 2*time.Minute),
		Enabled:  n.MayBool("ENABLED", true),
	}
}
