package httpkit

import (
	"net/http"

	"modhost/internal/platform/strings"
)

// MountUnder mounts a subrouter at prefix and applies per-module middlewares
// An empty or "/" prefix mounts in place on an inline group
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	scoped := func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	}
	if p := strings.NormPrefix(prefix); p != "" {
		r.Route(p, scoped)
		return
	}
	r.Group(scoped)
}
