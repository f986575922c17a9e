// Package ch provides a clickhouse client over clickhouse-go
package ch

import (
	"context"

	perr "modhost/internal/platform/errors"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL  string
	Role string
	Tag  string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a clickhouse-go connection
// A CH with a nil Conn is disabled
type CH struct {
	Conn driver.Conn
}

var openConn = clickhouse.Open

// Disabled returns a handle for deployments without ClickHouse
func Disabled() *CH { return &CH{} }

// Open parses the DSN and opens a connection pool. clickhouse-go dials lazily,
// call Ping to check the server
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "ch: parse url")
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, cfg.Tag)

	conn, err := openConn(opts)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "ch: open")
	}
	return &CH{Conn: conn}, nil
}

// Enabled reports whether the client has a connection
func (c *CH) Enabled() bool { return c != nil && c.Conn != nil }

// Ping checks connectivity
func (c *CH) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return perr.Unavailablef("ch: disabled")
	}
	if err := c.Conn.Ping(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "ch: ping")
	}
	return nil
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if !c.Enabled() {
		return nil, perr.Unavailablef("ch: disabled")
	}
	return c.Conn.Query(ctx, sql, args...)
}

// Close closes resources
func (c *CH) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.Conn.Close()
}

// OnShutdown closes the connection when the owning container shuts down
func (c *CH) OnShutdown(context.Context) error { return c.Close() }
