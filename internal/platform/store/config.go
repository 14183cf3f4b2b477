package store

import (
	"time"

	"callcrm/internal/platform/config"
)

// Config aggregates backend configuration
type Config struct {
	AppName string
	PG      PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Migrate applies the embedded schema on startup
	Migrate bool

	ConnectRetries int
	PingTimeout    time.Duration
}

// FromEnv reads SERVICE_PGSQL_*; DBURL is required
func FromEnv(cfg config.Conf) Config {
	pc := cfg.Prefix("SERVICE_PGSQL_")
	return Config{
		AppName: cfg.MayString("LOG_SERVICE", "callcrm"),
		PG: PGConfig{
			Enabled:        true,
			URL:            pc.MustString("DBURL"),
			MaxConns:       int32(pc.MayInt("MAX_CONNS", 8)),
			LogSQL:         pc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pc.MayInt("SLOW_MS", 200),
			Migrate:        pc.MayBool("MIGRATE", true),
			ConnectRetries: pc.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
	}
}
