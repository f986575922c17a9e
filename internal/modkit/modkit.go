// Package modkit is the composition root
//
// Compose reads a module.Descriptor tree once at startup: it orders modules so
// imports come first, rejects cycles, registers providers into one di.Container,
// checks that every dependency is visible to the module asking for it, builds
// singletons, then instantiates controllers. The result is an App that mounts
// routes and owns provider shutdown.
package modkit

import (
	"context"
	"net/http"

	"modhost/internal/modkit/di"
	"modhost/internal/modkit/httpkit"
	"modhost/internal/modkit/module"
	"modhost/internal/platform/logger"
)

// Built-in global tokens, visible to every module
const (
	TokenConfig di.Token = "modkit.config"
	TokenLogger di.Token = "modkit.logger"
	TokenGraph  di.Token = "modkit.graph"
)

// App is a composed module graph
type App struct {
	root  string
	mods  []mounted
	cont  *di.Container
	graph Graph
	log   *logger.Logger
}

type mounted struct {
	name        string
	prefix      string
	mw          []func(http.Handler) http.Handler
	controllers []module.Controller
}

// Graph returns a copy of the composition graph
func (a *App) Graph() Graph { return a.graph.clone() }

// MountRoutes mounts every module's controllers under its prefix with its middlewares
// Modules are mounted imports first
func (a *App) MountRoutes(r httpkit.Router) {
	for _, m := range a.mods {
		if len(m.controllers) == 0 {
			continue
		}
		mw := append([]func(http.Handler) http.Handler{tagModule(m.name)}, m.mw...)
		httpkit.MountUnder(r, m.prefix, mw, func(sub httpkit.Router) {
			for _, c := range m.controllers {
				c.MountRoutes(sub)
			}
		})
		a.log.Debug().Str("module", m.name).Str("prefix", m.prefix).Int("controllers", len(m.controllers)).Msg("routes mounted")
	}
}

// Resolve resolves tok from the container behind the app
func (a *App) Resolve(ctx context.Context, tok di.Token) (any, error) {
	return a.cont.Resolve(ctx, tok)
}

// Close shuts down constructed singletons in reverse order
func (a *App) Close(ctx context.Context) error {
	err := a.cont.Close(ctx)
	if err != nil {
		a.log.Error().Err(err).Str("root", a.root).Msg("app shutdown finished with errors")
		return err
	}
	a.log.Info().Str("root", a.root).Msg("app shut down")
	return nil
}

// tagModule puts the serving module name on the request context for logger.C
func tagModule(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithModule(r.Context(), name)))
		})
	}
}
