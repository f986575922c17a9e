package module

import (
	"time"

	"modhost/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot guardrails
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// Enabled reports whether a url is configured
func (c PGConfig) Enabled() bool { return c.URL != "" }

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	URL  string
	Role string
}

// Enabled reports whether a url is configured
func (c CHConfig) Enabled() bool { return c.URL != "" }

// FromConfig reads MODHOST_PG_* and MODHOST_CH_* from cfg
func FromConfig(cfg config.Conf) Config {
	pgc := cfg.Prefix("MODHOST_PG_")
	chc := cfg.Prefix("MODHOST_CH_")
	return Config{
		AppName: cfg.MayString("MODHOST_APP_NAME", "modhost"),
		PG: PGConfig{
			URL:            pgc.MayString("DBURL", ""),
			MaxConns:       int32(pgc.MayInt("MAX_CONNS", 0)),
			LogSQL:         pgc.MayBool("LOG_SQL", true),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 250),
			ConnectRetries: pgc.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			URL:  chc.MayString("DBURL", ""),
			Role: chc.MayString("ROLE", "api"),
		},
	}
}
