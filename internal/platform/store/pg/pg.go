// Package pg provides a Postgres client using pgxpool with optional query tracing
package pg

import (
	"context"
	"time"

	perr "modhost/internal/platform/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures pgxpool for pg
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG is a postgres client with pool and optional tracer
// A PG with a nil Pool is disabled: Ping reports unavailable and Close is a no-op
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Disabled returns a handle for deployments without Postgres
func Disabled() *PG { return &PG{} }

// Open creates a new PG client with the given config, optional tracer, and optional pool config mutator
// When tracer is set every query is reported through it, flagged slow past cfg.SlowMs
func Open(ctx context.Context, cfg Config, tracer QueryTracer, poolCfgMut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "pg: parse url")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if tracer != nil {
		pcfg.ConnConfig.Tracer = &pgxTracer{
			sink: tracer,
			slow: time.Duration(cfg.SlowMs) * time.Millisecond,
			now:  time.Now,
		}
	}
	if poolCfgMut != nil {
		poolCfgMut(pcfg)
	}
	pool, err := newPool(ctx, pcfg) // use seam
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "pg: open pool")
	}
	return &PG{
		Pool:   pool,
		Tracer: tracer,
		SlowMs: cfg.SlowMs,
	}, nil
}

// Enabled reports whether the client has a pool
func (p *PG) Enabled() bool { return p != nil && p.Pool != nil }

// Ping checks connectivity
func (p *PG) Ping(ctx context.Context) error {
	if !p.Enabled() {
		return perr.Unavailablef("pg: disabled")
	}
	if err := p.Pool.Ping(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "pg: ping")
	}
	return nil
}

// Close closes the pool
func (p *PG) Close() {
	if p.Enabled() {
		p.Pool.Close()
	}
}

// OnShutdown closes the pool when the owning container shuts down
func (p *PG) OnShutdown(context.Context) error {
	p.Close()
	return nil
}
