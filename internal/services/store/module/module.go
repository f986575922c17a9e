// Package module declares StoreModule, which owns the postgres and clickhouse handles
package module

import (
	"context"

	"modhost/internal/modkit"
	"modhost/internal/modkit/di"
	"modhost/internal/modkit/module"
	"modhost/internal/platform/config"
	"modhost/internal/platform/logger"
	chx "modhost/internal/platform/store/ch"
	"modhost/internal/platform/store/pg"
)

// Name is the module name in the composition graph
const Name = "StoreModule"

// Tokens exported to importing modules
const (
	TokenPG di.Token = "store.pg"
	TokenCH di.Token = "store.ch"
)

// Module provides store.pg and store.ch as singletons
// Both close their pools on shutdown
var Module = module.New(Name,
	module.WithProviders(
		di.Factory(TokenPG, providePG, modkit.TokenConfig, modkit.TokenLogger),
		di.Factory(TokenCH, provideCH, modkit.TokenConfig, modkit.TokenLogger),
	),
)

func deps(ctx context.Context, r di.Resolver, backend string) (Config, *logger.Logger, error) {
	cfg, err := di.Get[config.Conf](ctx, r, modkit.TokenConfig)
	if err != nil {
		return Config{}, nil, err
	}
	log, err := di.Get[*logger.Logger](ctx, r, modkit.TokenLogger)
	if err != nil {
		return Config{}, nil, err
	}
	l := logger.Module(log, Name).With().Str("backend", backend).Logger()
	return FromConfig(cfg), &l, nil
}

func providePG(ctx context.Context, r di.Resolver) (*pg.PG, error) {
	cfg, log, err := deps(ctx, r, "pg")
	if err != nil {
		return nil, err
	}
	return openPG(ctx, cfg.PG, log)
}

func provideCH(ctx context.Context, r di.Resolver) (*chx.CH, error) {
	cfg, log, err := deps(ctx, r, "ch")
	if err != nil {
		return nil, err
	}
	return openCH(ctx, cfg.CH, cfg.AppName, log)
}
