// Package swaggerkit mounts the Swagger UI and serves the OpenAPI document
package swaggerkit

import (
	"net/http"

	phttp "modhost/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocSource yields the raw OpenAPI document, *swag.Spec satisfies it
type DocSource interface {
	ReadDoc() string
}

// Mount the Swagger UI at /api/docs and the JSON spec at /api/docs/doc.json if enabled
func Mount(r phttp.Router, enabled bool, src DocSource, opts ...Option) {
	if !enabled || src == nil {
		return
	}
	o := options{serverURL: "/api/v1"}
	for _, fn := range opts {
		fn(&o)
	}

	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(src, o))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

// Option tunes the served document
type Option func(*options)

type options struct {
	serverURL   string
	titleSuffix string
}

// WithServerURL sets the OAS3 server url added when the document has none
func WithServerURL(u string) Option { return func(o *options) { o.serverURL = u } }

// WithTitleSuffix appends s to info.title, e.g. the environment name
func WithTitleSuffix(s string) Option { return func(o *options) { o.titleSuffix = s } }
