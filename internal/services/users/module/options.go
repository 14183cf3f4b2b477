package module

import (
	"callcrm/internal/platform/config"
)

// Options for the users module
type Options struct {
	DefaultTarget int
}

// FromConfig fills options from environment
// CORE_USERS_DEFAULT_TARGET (default 20) is the quota for users without one
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_USERS_")
	return Options{
		DefaultTarget: n.MayInt("DEFAULT_TARGET", 20),
	}
}
