package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"modhost/internal/platform/net/middleware"
)

// StackOptions tunes CommonStackWith
type StackOptions struct {
	CORS    middleware.CORSOptions
	Timeout time.Duration
	Slow    time.Duration
}

// CommonStack returns a baseline per scope middleware slice
func CommonStack() []func(http.Handler) http.Handler {
	return CommonStackWith(StackOptions{})
}

// CommonStackWith is CommonStack with explicit CORS, timeout and slow request settings
func CommonStackWith(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Slow <= 0 {
		o.Slow = 500 * time.Millisecond
	}
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// observability, outside recovery so panics log as 500
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow}),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		middleware.CORS(o.CORS),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
