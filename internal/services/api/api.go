// Package api composes the modules served by the api binary and mounts them
package api

import (
	"modhost/internal/platform/config"
	"modhost/internal/platform/net/middleware"
	phttp "modhost/internal/platform/net/http"

	"modhost/internal/modkit"
	"modhost/internal/modkit/httpkit"
	"modhost/internal/modkit/module"
	"modhost/internal/modkit/swaggerkit"

	"modhost/internal/services/api/docs"

	appmod "modhost/internal/services/api/app/module"
	metamod "modhost/internal/services/api/meta/module"
	storemod "modhost/internal/services/store/module"
)

// Module is the root module; it owns nothing and imports every feature module
var Module = module.New("server",
	module.WithImports(
		module.Import(appmod.Module),
		module.Import(metamod.Module),
		module.Import(storemod.Module),
	),
)

// Options are the API options
type Options struct {
	EnableSwagger  bool
	EnableProfiler bool
	Stack          httpkit.StackOptions
}

// FromConfig reads SWAGGER, PROFILER, CORS_ORIGINS, TIMEOUT and SLOW from cfg (e.g. MODHOST_API_)
func FromConfig(cfg config.Conf) Options {
	return Options{
		EnableSwagger:  cfg.MayBool("SWAGGER", true),
		EnableProfiler: cfg.MayBool("PROFILER", false),
		Stack: httpkit.StackOptions{
			CORS:    middleware.CORSOptions{AllowedOrigins: cfg.MayCSV("CORS_ORIGINS", nil)},
			Timeout: cfg.MayDuration("TIMEOUT", 0),
			Slow:    cfg.MayDuration("SLOW", 0),
		},
	}
}

// Mount mounts the composed app under /api/v1 with the common stack,
// plus swagger under /api/docs and pprof under /debug when enabled
func Mount(r phttp.Router, app *modkit.App, opt Options) {
	httpkit.MountAPIV1(r, httpkit.CommonStackWith(opt.Stack), app.MountRoutes)

	swaggerkit.Mount(r, opt.EnableSwagger, docs.SwaggerInfo)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
}
