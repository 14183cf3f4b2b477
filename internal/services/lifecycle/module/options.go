package module

import (
	"callcrm/internal/platform/config"
)

// Options for the lifecycle module
type Options struct {
	Workers int
	Enabled bool
}

// FromConfig fills options from environment
// CORE_LIFECYCLE_WORKERS (default 4) bounds concurrent record creation
// CORE_LIFECYCLE_ENABLED (default true) starts the worker in the api process
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_LIFECYCLE_")
	return Options{
		Workers: n.MayInt("WORKERS", 4),
		Enabled: n.MayBool("ENABLED", true),
	}
}
