// Package module declares AppModule, the module serving the api root
package module

import (
	"context"

	"modhost/internal/modkit/di"
	"modhost/internal/modkit/module"

	apphttp "modhost/internal/services/api/app/http"
)

// Name is the module name in the composition graph
const Name = "AppModule"

// Module has no imports and no providers, only AppController
var Module = module.New(Name,
	module.WithControllers(
		module.ControllerOf("AppController", func(context.Context, di.Resolver) (*apphttp.Controller, error) {
			return apphttp.NewController(), nil
		}),
	),
)
