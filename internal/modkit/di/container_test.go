package di

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	perr "modhost/internal/platform/errors"
	"modhost/internal/platform/logger"
	kit "modhost/internal/platform/testkit"
)

func quiet() *logger.Logger {
	l := logger.New(logger.Options{Level: "off", Format: "json"})
	return &l
}

func mustRegister(t *testing.T, c *Container, ps ...Provider) {
	t.Helper()
	for _, p := range ps {
		if err := c.Register(p); err != nil {
			t.Fatalf("Register(%s): %v", p.Token, err)
		}
	}
}

type hooks struct {
	name string
	log  *[]string
	fail error
}

func (h *hooks) OnInit(context.Context) error {
	*h.log = append(*h.log, "init:"+h.name)
	return nil
}

func (h *hooks) OnShutdown(context.Context) error {
	*h.log = append(*h.log, "shutdown:"+h.name)
	return h.fail
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, Resolver) (any, error) { return 1, nil }
	cases := []struct {
		name  string
		p     Provider
		field string
	}{
		{"empty token", Provider{New: noop}, "token"},
		{"bad token", Provider{Token: "-x", New: noop}, "token"},
		{"bad dep", Provider{Token: "x", Deps: []Token{"has space"}, New: noop}, "deps[0]"},
		{"bad scope", Provider{Token: "x", Scope: 7, New: noop}, "scope"},
		{"nil constructor", Provider{Token: "x"}, "New"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := New(WithLogger(quiet())).Register(tc.p)
			kit.MustCode(t, err, perr.ErrorCodeValidation)
			if e, _ := perr.As(err); e.Field() != tc.field || e.Op() != "di.Register" {
				t.Fatalf("field=%q op=%q, want field %q", e.Field(), e.Op(), tc.field)
			}
		})
	}
}

func TestRegister_DuplicateToken(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(quiet()))
	mustRegister(t, c, Value[int]("n", 1))
	err := c.Register(Value[int]("n", 2))
	kit.MustCode(t, err, perr.ErrorCodeDuplicateKey)

	if got := c.Tokens(); len(got) != 1 || got[0] != "n" {
		t.Fatalf("Tokens = %v", got)
	}
	if !c.Has("n") || c.Has("m") {
		t.Fatal("Has mismatch")
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	t.Parallel()

	_, err := New(WithLogger(quiet())).Resolve(context.Background(), "ghost")
	kit.MustCode(t, err, perr.ErrorCodeNotFound)
}

func TestResolve_SingletonVsTransient(t *testing.T) {
	t.Parallel()

	var singles, transients atomic.Int32
	c := New(WithLogger(quiet()))
	mustRegister(t, c,
		Factory("single", func(context.Context, Resolver) (*int, error) {
			n := int(singles.Add(1))
			return &n, nil
		}),
		TransientFactory("fresh", func(context.Context, Resolver) (*int, error) {
			n := int(transients.Add(1))
			return &n, nil
		}),
	)

	ctx := context.Background()
	a := MustGet[*int](ctx, c, "single")
	b := MustGet[*int](ctx, c, "single")
	if a != b || singles.Load() != 1 {
		t.Fatalf("singleton built %d times", singles.Load())
	}

	x := MustGet[*int](ctx, c, "fresh")
	y := MustGet[*int](ctx, c, "fresh")
	if x == y || transients.Load() != 2 {
		t.Fatalf("transient built %d times", transients.Load())
	}
	if got := c.Constructed(); len(got) != 1 || got[0] != "single" {
		t.Fatalf("Constructed = %v, transients must not be tracked", got)
	}
	if p, ok := c.Provider("fresh"); !ok || p.Scope != Transient {
		t.Fatalf("TransientFactory scope = %v, want transient", p.Scope)
	}
}

func TestResolve_DeclaredDepsOnly(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(quiet()))
	mustRegister(t, c,
		Value("greeting", "hello"),
		Value("name", "world"),
		Factory("message", func(ctx context.Context, r Resolver) (string, error) {
			g, err := Get[string](ctx, r, "greeting")
			if err != nil {
				return "", err
			}
			return g + " " + MustGet[string](ctx, r, "name"), nil
		}, "greeting", "name"),
		Factory("sneaky", func(ctx context.Context, r Resolver) (string, error) {
			return Get[string](ctx, r, "name")
		}, "greeting"),
	)

	ctx := context.Background()
	if got := MustGet[string](ctx, c, "message"); got != "hello world" {
		t.Fatalf("message = %q", got)
	}
	_, err := c.Resolve(ctx, "sneaky")
	kit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
	kit.MustContain(t, err.Error(), `undeclared dependency "name"`)
}

func TestResolve_RuntimeCycle(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(quiet()))
	dep := func(tok Token) func(context.Context, Resolver) (any, error) {
		return func(ctx context.Context, r Resolver) (any, error) { return r.Resolve(ctx, tok) }
	}
	mustRegister(t, c,
		Provider{Token: "a", Deps: []Token{"b"}, New: dep("b")},
		Provider{Token: "b", Deps: []Token{"a"}, New: dep("a")},
	)

	_, err := c.Resolve(context.Background(), "a")
	kit.MustCode(t, err, perr.ErrorCodeCycle)
	kit.MustContain(t, err.Error(), "a -> b -> a")
}

func TestResolve_ConstructorFailures(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(quiet()))
	mustRegister(t, c,
		Factory("plain", func(context.Context, Resolver) (int, error) { return 0, errors.New("boom") }),
		Factory("coded", func(context.Context, Resolver) (int, error) { return 0, perr.Unavailablef("db down") }),
		Factory("panics", func(context.Context, Resolver) (int, error) { panic("kaboom") }),
	)

	ctx := context.Background()
	_, err := c.Resolve(ctx, "plain")
	kit.MustCode(t, err, perr.ErrorCodeLifecycle)
	_, err = c.Resolve(ctx, "coded")
	kit.MustCode(t, err, perr.ErrorCodeUnavailable)
	_, err = c.Resolve(ctx, "panics")
	kit.MustCode(t, err, perr.ErrorCodePanic)

	if len(c.Constructed()) != 0 {
		t.Fatalf("failed providers must not be cached: %v", c.Constructed())
	}
}

func TestResolve_ResolverExpiresAfterConstructor(t *testing.T) {
	t.Parallel()

	var kept Resolver
	c := New(WithLogger(quiet()))
	mustRegister(t, c,
		Value("x", 1),
		Factory("keeper", func(_ context.Context, r Resolver) (int, error) {
			kept = r
			return 0, nil
		}, "x"),
	)
	if _, err := c.Resolve(context.Background(), "keeper"); err != nil {
		t.Fatal(err)
	}
	_, err := kept.Resolve(context.Background(), "x")
	kit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}

func TestGet_TypeMismatch(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(quiet()))
	mustRegister(t, c, Value("n", 42))

	_, err := Get[string](context.Background(), c, "n")
	kit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
	kit.MustPanic(t, func() { _ = MustGet[string](context.Background(), c, "n") })
}

func TestLifecycle_InitThenReverseShutdown(t *testing.T) {
	t.Parallel()

	var log []string
	c := New(WithLogger(quiet()))
	mustRegister(t, c,
		Factory("db", func(context.Context, Resolver) (*hooks, error) {
			return &hooks{name: "db", log: &log}, nil
		}),
		Factory("cache", func(ctx context.Context, r Resolver) (*hooks, error) {
			if _, err := r.Resolve(ctx, "db"); err != nil {
				return nil, err
			}
			return &hooks{name: "cache", log: &log}, nil
		}, "db"),
	)

	ctx := context.Background()
	if _, err := c.Resolve(ctx, "cache"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []string{"init:db", "init:cache", "shutdown:cache", "shutdown:db"}
	if strings.Join(log, ",") != strings.Join(want, ",") {
		t.Fatalf("lifecycle = %v, want %v", log, want)
	}

	if err := c.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	_, err := c.Resolve(ctx, "db")
	kit.MustCode(t, err, perr.ErrorCodeUnavailable)
}

func TestClose_JoinsErrors(t *testing.T) {
	t.Parallel()

	var log []string
	e1, e2 := errors.New("one"), errors.New("two")
	c := New(WithLogger(quiet()))
	mustRegister(t, c,
		Value("a", &hooks{name: "a", log: &log, fail: e1}),
		Value("b", &hooks{name: "b", log: &log, fail: e2}),
	)
	ctx := context.Background()
	for _, tok := range c.Tokens() {
		if _, err := c.Resolve(ctx, tok); err != nil {
			t.Fatal(err)
		}
	}

	err := c.Close(ctx)
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("Close should join both errors, got %v", err)
	}
}

func TestCheckGraph(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, Resolver) (any, error) { return nil, nil }
	cases := []struct {
		name  string
		ps    []Provider
		code  perr.ErrorCode
		inMsg string
	}{
		{
			name: "diamond is fine",
			ps: []Provider{
				{Token: "top", Deps: []Token{"l", "r"}, New: noop},
				{Token: "l", Deps: []Token{"base"}, New: noop},
				{Token: "r", Deps: []Token{"base"}, New: noop},
				{Token: "base", New: noop},
			},
		},
		{
			name: "three cycle",
			ps: []Provider{
				{Token: "x", Deps: []Token{"y"}, New: noop},
				{Token: "y", Deps: []Token{"z"}, New: noop},
				{Token: "z", Deps: []Token{"x"}, New: noop},
			},
			code:  perr.ErrorCodeCycle,
			inMsg: "x -> y -> z -> x",
		},
		{
			name:  "self loop",
			ps:    []Provider{{Token: "me", Deps: []Token{"me"}, New: noop}},
			code:  perr.ErrorCodeCycle,
			inMsg: "me -> me",
		},
		{
			name:  "unknown dep",
			ps:    []Provider{{Token: "x", Deps: []Token{"ghost"}, New: noop}},
			code:  perr.ErrorCodeNotFound,
			inMsg: `"ghost"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(WithLogger(quiet()))
			mustRegister(t, c, tc.ps...)
			err := c.CheckGraph()
			if tc.inMsg == "" {
				if err != nil {
					t.Fatalf("CheckGraph: %v", err)
				}
				return
			}
			kit.MustCode(t, err, tc.code)
			kit.MustContain(t, err.Error(), tc.inMsg)
		})
	}
}

func TestResolve_ConcurrentSingleton(t *testing.T) {
	t.Parallel()

	var built atomic.Int32
	c := New(WithLogger(quiet()))
	mustRegister(t, c, Factory("once", func(context.Context, Resolver) (int32, error) {
		return built.Add(1), nil
	}))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resolve(context.Background(), "once"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if built.Load() != 1 {
		t.Fatalf("built %d times", built.Load())
	}
}

func TestScopeString(t *testing.T) {
	t.Parallel()

	if Singleton.String() != "singleton" || Transient.String() != "transient" || Scope(9).String() != "scope(9)" {
		t.Fatal("unexpected scope names")
	}
}

func TestRestrict(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(quiet()))
	mustRegister(t, c, Value("a", 1), Value("b", 2))

	r := c.Restrict("ctrl", []Token{"a"})
	if v, err := Get[int](context.Background(), r, "a"); err != nil || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, err)
	}
	_, err := r.Resolve(context.Background(), "b")
	kit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}
