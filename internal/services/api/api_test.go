package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modhost/internal/modkit"
	"modhost/internal/platform/config"
	"modhost/internal/platform/logger"
	phttp "modhost/internal/platform/net/http"
	kit "modhost/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func newServer(t *testing.T, opt Options) (*modkit.App, http.Handler) {
	t.Helper()
	ctx := context.Background()
	l := logger.New(logger.Options{Level: "off", Format: "json"})
	app, err := modkit.Compose(ctx, Module,
		modkit.WithLogger(&l),
		modkit.WithConfig(config.New().Prefix("API_TEST_")),
	)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(ctx) })

	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), app, opt)
	return app, m
}

func TestModule_Graph(t *testing.T) {
	app, _ := newServer(t, Options{})
	g := app.Graph()
	if g.Root != "server" {
		t.Fatalf("root = %q", g.Root)
	}
	want := []string{"AppModule", "StoreModule", "MetaModule", "server"}
	if len(g.Order) != len(want) {
		t.Fatalf("order = %v, want %v", g.Order, want)
	}
	for i := range want {
		if g.Order[i] != want[i] {
			t.Fatalf("order = %v, want %v", g.Order, want)
		}
	}
}

func TestMount_HelloWorld(t *testing.T) {
	_, h := newServer(t, Options{})

	for _, path := range []string{"/api/v1", "/api/v1/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
		}
		var env struct {
			Data      string `json:"data"`
			RequestID string `json:"request_id"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatal(err)
		}
		if env.Data != "Hello World!" {
			t.Fatalf("GET %s data = %q", path, env.Data)
		}
		if rec.Header().Get("Cache-Control") == "" {
			t.Fatalf("common stack not applied to %s", path)
		}
	}
}

func TestMount_MetaEndpoints(t *testing.T) {
	_, h := newServer(t, Options{})
	for _, p := range []string{"health", "ready", "version", "service", "modules", "routes"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/meta/"+p, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /api/v1/meta/%s = %d: %s", p, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/meta/routes", nil))
	kit.MustContain(t, rec.Body.String(), "/api/v1/meta/ready")
}

func TestMount_SwaggerAndProfilerToggles(t *testing.T) {
	cases := []struct {
		name string
		opt  Options
		path string
		want int
	}{
		{"swagger on", Options{EnableSwagger: true}, "/api/docs/doc.json", http.StatusOK},
		{"swagger off", Options{}, "/api/docs/doc.json", http.StatusNotFound},
		{"profiler on", Options{EnableProfiler: true}, "/debug/pprof/cmdline", http.StatusOK},
		{"profiler off", Options{}, "/debug/pprof/cmdline", http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, h := newServer(t, c.opt)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
			if rec.Code != c.want {
				t.Fatalf("GET %s = %d, want %d", c.path, rec.Code, c.want)
			}
		})
	}
}

func TestMount_DocJSONIsNormalized(t *testing.T) {
	_, h := newServer(t, Options{EnableSwagger: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))

	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("doc.json: %v", err)
	}
	info, _ := spec["info"].(map[string]any)
	if info["title"] != "modhost API" {
		t.Fatalf("title = %v", info["title"])
	}
	kit.MustContain(t, rec.Body.String(), `"/meta/ready"`)
	kit.MustContain(t, rec.Body.String(), `"Meta"`)
}

func TestDocs_CoverMountedRoutes(t *testing.T) {
	_, h := newServer(t, Options{EnableSwagger: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))

	var spec struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("doc.json: %v", err)
	}

	mux := h.(*chi.Mux)
	documented := 0
	for _, r := range phttp.Routes(phttp.AdaptChi(mux)) {
		path, ok := strings.CutPrefix(r.Pattern, "/api/v1")
		if !ok {
			continue
		}
		if path == "" {
			path = "/"
		}
		ops, ok := spec.Paths[path]
		if !ok {
			t.Fatalf("route %s %s is not documented", r.Method, r.Pattern)
		}
		if _, ok := ops[strings.ToLower(r.Method)]; !ok {
			t.Fatalf("route %s %s has no %s operation in the docs", r.Method, r.Pattern, r.Method)
		}
		documented++
	}
	if documented != len(spec.Paths) {
		t.Fatalf("docs list %d paths, router serves %d under /api/v1", len(spec.Paths), documented)
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("FC_SWAGGER", "false")
	t.Setenv("FC_PROFILER", "true")
	t.Setenv("FC_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FC_TIMEOUT", "5s")

	o := FromConfig(config.New().Prefix("FC_"))
	if o.EnableSwagger || !o.EnableProfiler {
		t.Fatalf("toggles = %+v", o)
	}
	if len(o.Stack.CORS.AllowedOrigins) != 2 || o.Stack.Timeout.String() != "5s" {
		t.Fatalf("stack = %+v", o.Stack)
	}
}
