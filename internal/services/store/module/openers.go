package module

import (
	"context"
	"time"

	perr "modhost/internal/platform/errors"
	"modhost/internal/platform/logger"
	chx "modhost/internal/platform/store/ch"
	"modhost/internal/platform/store/pg"
)

// seams
var (
	pgOpen = pg.Open
	pgPing = func(ctx context.Context, p *pg.PG) error { return p.Ping(ctx) }
	chOpen = chx.Open
	sleep  = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
)

const (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// openPG opens the pool and pings it with retry and backoff
// A missing url yields a disabled handle
func openPG(ctx context.Context, cfg PGConfig, log *logger.Logger) (*pg.PG, error) {
	if !cfg.Enabled() {
		log.Info().Msg("postgres disabled, no url configured")
		return pg.Disabled(), nil
	}

	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(*log)
	}
	p, err := pgOpen(ctx, pg.Config{
		URL:      cfg.URL,
		MaxConns: cfg.MaxConns,
		SlowMs:   cfg.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.ConnectRetries, 1)
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	var lastErr error
	backoff := backoffStart
	for i := range attempts {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = pgPing(toCtx, p)
		cancel()
		if lastErr == nil {
			log.Info().Int("attempt", i+1).Int32("max_conns", cfg.MaxConns).Msg("postgres ready")
			return p, nil
		}
		log.Warn().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("postgres ping failed")
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			p.Close()
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "store: postgres boot cancelled")
		}
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeUnavailable, "store: postgres ping failed after %d attempts", attempts)
}

// openCH opens a clickhouse connection; the driver dials lazily
func openCH(ctx context.Context, cfg CHConfig, appName string, log *logger.Logger) (*chx.CH, error) {
	if !cfg.Enabled() {
		log.Info().Msg("clickhouse disabled, no url configured")
		return chx.Disabled(), nil
	}
	c, err := chOpen(ctx, chx.Config{URL: cfg.URL, Role: cfg.Role, Tag: appName})
	if err != nil {
		return nil, err
	}
	log.Info().Str("role", cfg.Role).Msg("clickhouse opened")
	return c, nil
}
