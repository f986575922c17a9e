// @title         modhost API
// @version       0.1.0
// @description   Module host: composed modules, meta and readiness endpoints

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"modhost/internal/modkit"
	"modhost/internal/platform/config"
	"modhost/internal/platform/logger"
	"modhost/internal/platform/net/middleware"
	phttp "modhost/internal/platform/net/http"

	"modhost/internal/services/api"
)

func main() {
	// .env first so LOG_* and MODHOST_* pick it up
	loaded, dotErr := config.LoadDotEnv()
	logger.Init(logger.FromEnv())
	l := logger.Get()
	if dotErr != nil {
		l.Fatal().Err(dotErr).Msg("dotenv load failed")
	}
	if len(loaded) > 0 {
		l.Debug().Strs("files", loaded).Msg("dotenv loaded")
	}

	root := config.New()
	apiCfg := root.Prefix("MODHOST_API_") // MODHOST_API_PORT, _SWAGGER, _PROFILER ...

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := modkit.Compose(ctx, api.Module,
		modkit.WithLogger(logger.Named("modkit")),
		modkit.WithConfig(root),
	)
	if err != nil {
		l.Fatal().Err(err).Msg("compose failed")
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("app close failed")
		}
	}()

	srv := phttp.NewServer(apiCfg)
	srv.Router().Use(middleware.Heartbeat("/healthz"))
	api.Mount(srv.Router(), app, api.FromConfig(apiCfg))

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
