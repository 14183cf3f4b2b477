// Package modkit wires service modules from shared dependencies
package modkit

import (
	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	"callcrm/internal/platform/config"
	"callcrm/internal/platform/logger"
)

// Deps are the shared dependencies handed to every module
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner

	// Clock is the time source for day math; nil means the system clock
	Clock calday.Clock
}

// ClockOrSystem returns d.Clock or the system clock
func (d Deps) ClockOrSystem() calday.Clock {
	if d.Clock == nil {
		return calday.SystemClock{}
	}
	return d.Clock
}
