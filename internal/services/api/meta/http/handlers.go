// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"modhost/internal/core/version"
	"modhost/internal/modkit"
	"modhost/internal/modkit/httpkit"
	"modhost/internal/modkit/swaggerkit"
	ptime "modhost/internal/platform/time"

	"github.com/google/uuid"
)

func init() {
	swaggerkit.Register(func(spec map[string]any) {
		tags, _ := spec["tags"].([]any)
		spec["tags"] = append(tags, map[string]any{
			"name":        "Meta",
			"description": "Liveness, readiness, build info and the composed module graph",
		})
	})
}

// Probe is satisfied by store handles that can be disabled
type Probe interface {
	Enabled() bool
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName  string
	StartedAt    time.Time
	Instance     uuid.UUID
	PG           Probe
	CH           Probe
	Graph        modkit.Graph
	ReadyTimeout time.Duration
	Now          func() time.Time
}

// Controller serves /health, /ready, /version, /service, /modules and /routes
type Controller struct {
	deps   Deps
	router httpkit.Router
}

// NewController fills defaults for zero fields of d
func NewController(d Deps) *Controller {
	if d.ServiceName == "" {
		d.ServiceName = version.Service
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = d.Now()
	}
	if d.Instance == uuid.Nil {
		d.Instance = uuid.New()
	}
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	return &Controller{deps: d}
}

// MountRoutes implements module.Controller
func (h *Controller) MountRoutes(r httpkit.Router) {
	h.router = r

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/modules", h.modules)
	httpkit.Get(r, "/routes", h.routes)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool       `json:"ok"                example:"true"`
	Service string     `json:"service"           example:"modhost-api"`
	Started *time.Time `json:"started,omitempty" example:"2025-09-03T13:00:00Z"`
	Now     time.Time  `json:"now"               example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    time.Time    `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name     string    `json:"name"     example:"modhost-api"`
	Instance string    `json:"instance" example:"6f1c8a7e-2f7b-4c51-9a59-0f7d2b1c3e44"`
	Started  time.Time `json:"started"  example:"2025-09-03T13:00:00Z"`
	Uptime   int64     `json:"uptime"   example:"300"`
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *Controller) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: ptime.UTCPtr(h.deps.StartedAt),
		Now:     h.deps.Now().UTC(),
	}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *Controller) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), h.deps.ReadyTimeout)
	defer cancel()

	pg := check(ctx, "pg", h.deps.PG)
	ch := check(ctx, "ch", h.deps.CH)

	return ReadyResponse{
		Status: overall(pg, ch),
		Checks: []ReadyCheck{pg, ch},
		Now:    h.deps.Now().UTC(),
	}, nil
}

func check(ctx stdctx.Context, name string, p Probe) ReadyCheck {
	if p == nil || !p.Enabled() {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// overall is fail if any check failed, ok if all passed, degraded otherwise
func overall(checks ...ReadyCheck) string {
	status := "ok"
	for _, c := range checks {
		switch c.Status {
		case "fail":
			return "fail"
		case "ok":
		default:
			status = "degraded"
		}
	}
	return status
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *Controller) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service instance and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h *Controller) service(_ *http.Request) (any, error) {
	now := h.deps.Now()
	return ServiceResponse{
		Name:     h.deps.ServiceName,
		Instance: h.deps.Instance.String(),
		Started:  h.deps.StartedAt.UTC(),
		Uptime:   ptime.Seconds(now.Sub(h.deps.StartedAt)),
	}, nil
}

// @Summary Composed module graph
// @Tags Meta
// @Produce json
// @Success 200 {object} modkit.Graph
// @Router /meta/modules [get]
func (h *Controller) modules(_ *http.Request) (any, error) {
	return h.deps.Graph, nil
}

// @Summary Mounted routes
// @Tags Meta
// @Produce json
// @Success 200 {array} httpkit.RouteInfo
// @Router /meta/routes [get]
func (h *Controller) routes(_ *http.Request) (any, error) {
	if h.router == nil {
		return []httpkit.RouteInfo{}, nil
	}
	return httpkit.Routes(h.router), nil
}
