// Package module declares MetaModule, which serves service metadata under /meta
package module

import (
	"context"

	"modhost/internal/modkit"
	"modhost/internal/modkit/di"
	"modhost/internal/modkit/module"
	chx "modhost/internal/platform/store/ch"
	"modhost/internal/platform/store/pg"

	metahttp "modhost/internal/services/api/meta/http"
	storemod "modhost/internal/services/store/module"
)

// Name is the module name in the composition graph
const Name = "MetaModule"

// Module imports StoreModule for the readiness pings
var Module = module.New(Name,
	module.WithPrefix("/meta"),
	module.WithImports(module.Import(storemod.Module)),
	module.WithControllers(
		module.ControllerOf("MetaController", newController,
			storemod.TokenPG, storemod.TokenCH, modkit.TokenGraph),
	),
)

func newController(ctx context.Context, r di.Resolver) (*metahttp.Controller, error) {
	p, err := di.Get[*pg.PG](ctx, r, storemod.TokenPG)
	if err != nil {
		return nil, err
	}
	c, err := di.Get[*chx.CH](ctx, r, storemod.TokenCH)
	if err != nil {
		return nil, err
	}
	g, err := di.Get[modkit.Graph](ctx, r, modkit.TokenGraph)
	if err != nil {
		return nil, err
	}
	return metahttp.NewController(metahttp.Deps{PG: p, CH: c, Graph: g}), nil
}
