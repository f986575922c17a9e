package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"modhost/internal/core/version"
	"modhost/internal/modkit"
	"modhost/internal/modkit/httpkit"
	phttp "modhost/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type probe struct {
	enabled bool
	err     error
}

func (p probe) Enabled() bool              { return p.enabled }
func (p probe) Ping(context.Context) error { return p.err }

var (
	started = time.Date(2025, 9, 3, 13, 0, 0, 0, time.UTC)
	fixedID = uuid.MustParse("6f1c8a7e-2f7b-4c51-9a59-0f7d2b1c3e44")
)

func serve(t *testing.T, d Deps) *chi.Mux {
	t.Helper()
	if d.Now == nil {
		d.Now = func() time.Time { return started.Add(5 * time.Minute) }
	}
	d.StartedAt = started
	d.Instance = fixedID
	m := chi.NewRouter()
	phttp.AdaptChi(m).Route("/meta", func(r phttp.Router) { NewController(d).MountRoutes(r) })
	return m
}

func get[T any](t *testing.T, m http.Handler, path string) T {
	t.Helper()
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
	}
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return env.Data
}

func TestHealth(t *testing.T) {
	t.Parallel()
	got := get[HealthResponse](t, serve(t, Deps{}), "/meta/health")
	if !got.OK || got.Service != version.Service {
		t.Fatalf("health = %+v", got)
	}
	if got.Started == nil || !got.Started.Equal(started) {
		t.Fatalf("started = %v, want %v", got.Started, started)
	}
}

func TestReady(t *testing.T) {
	t.Parallel()
	down := errors.New("connection refused")
	cases := []struct {
		name   string
		pg, ch Probe
		want   string
		pgWant string
		chWant string
	}{
		{"nil probes", nil, nil, "degraded", "skipped", "skipped"},
		{"disabled", probe{}, probe{}, "degraded", "skipped", "skipped"},
		{"all ok", probe{enabled: true}, probe{enabled: true}, "ok", "ok", "ok"},
		{"one skipped", probe{enabled: true}, probe{}, "degraded", "ok", "skipped"},
		{"one failing", probe{enabled: true, err: down}, probe{enabled: true}, "fail", "fail", "ok"},
		{"fail beats skipped", probe{}, probe{enabled: true, err: down}, "fail", "skipped", "fail"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := get[ReadyResponse](t, serve(t, Deps{PG: c.pg, CH: c.ch}), "/meta/ready")
			if got.Status != c.want {
				t.Fatalf("status = %q, want %q", got.Status, c.want)
			}
			if len(got.Checks) != 2 || got.Checks[0].Name != "pg" || got.Checks[1].Name != "ch" {
				t.Fatalf("checks = %+v", got.Checks)
			}
			if got.Checks[0].Status != c.pgWant || got.Checks[1].Status != c.chWant {
				t.Fatalf("checks = %+v", got.Checks)
			}
			for _, ck := range got.Checks {
				if (ck.Status == "fail") != (ck.Error != "") {
					t.Fatalf("error text only on failures: %+v", ck)
				}
			}
		})
	}
}

func TestVersionAndService(t *testing.T) {
	t.Parallel()
	m := serve(t, Deps{ServiceName: "svc"})

	v := get[version.BuildInfo](t, m, "/meta/version")
	if v.Service != version.Service || v.Version == "" {
		t.Fatalf("version = %+v", v)
	}

	s := get[ServiceResponse](t, m, "/meta/service")
	if s.Name != "svc" || s.Instance != fixedID.String() || s.Uptime != 300 {
		t.Fatalf("service = %+v", s)
	}

	skewed := serve(t, Deps{Now: func() time.Time { return started.Add(-time.Minute) }})
	if s := get[ServiceResponse](t, skewed, "/meta/service"); s.Uptime != 0 {
		t.Fatalf("uptime with clock behind start = %d, want 0", s.Uptime)
	}
}

func TestModulesAndRoutes(t *testing.T) {
	t.Parallel()
	g := modkit.Graph{
		Root:    "server",
		Order:   []string{"StoreModule", "MetaModule", "server"},
		Modules: []modkit.ModuleInfo{{Name: "MetaModule", Prefix: "/meta", Imports: []string{"StoreModule"}}},
	}
	m := serve(t, Deps{Graph: g})

	got := get[modkit.Graph](t, m, "/meta/modules")
	if got.Root != "server" || len(got.Order) != 3 || got.Modules[0].Imports[0] != "StoreModule" {
		t.Fatalf("modules = %+v", got)
	}

	routes := get[[]httpkit.RouteInfo](t, m, "/meta/routes")
	want := map[string]bool{
		"/meta/health": true, "/meta/ready": true, "/meta/version": true,
		"/meta/service": true, "/meta/modules": true, "/meta/routes": true,
	}
	for _, r := range routes {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s %s", r.Method, r.Pattern)
		}
		delete(want, r.Pattern)
	}
	if len(want) != 0 {
		t.Fatalf("missing routes %v in %+v", want, routes)
	}
}

func TestOverall(t *testing.T) {
	t.Parallel()
	if got := overall(); got != "ok" {
		t.Fatalf("overall() = %q, want ok", got)
	}
	if got := overall(ReadyCheck{Status: "unknown"}); got != "degraded" {
		t.Fatalf("overall(unknown) = %q, want degraded", got)
	}
}
