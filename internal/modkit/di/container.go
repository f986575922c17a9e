package di

import (
	"context"
	stderrs "errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	perr "modhost/internal/platform/errors"
	"modhost/internal/platform/logger"
	"modhost/internal/platform/validate"
)

// Container holds providers and the singletons built from them
// Construction is serialized, so a constructor must not resolve through the
// container from another goroutine
type Container struct {
	mu     sync.Mutex
	log    *logger.Logger
	byTok  map[Token]*entry
	order  []Token
	built  []Token
	closed bool
}

type entry struct {
	p    Provider
	inst any
	done bool
}

// Option configures a Container
type Option func(*Container)

// WithLogger sets the logger used for construction and shutdown events
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns an empty container
func New(opts ...Option) *Container {
	c := &Container{byTok: map[Token]*entry{}}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logger.Named("di")
	}
	return c
}

// Register adds p. Malformed providers fail validation and a token can only be registered once
func (c *Container) Register(p Provider) error {
	if err := validate.Struct(p); err != nil {
		return perr.WithOp(err, "di.Register")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.byTok[p.Token]; dup {
		return perr.WithOp(perr.WithField(perr.DuplicateKeyf("di: token %q already registered", p.Token), string(p.Token)), "di.Register")
	}
	p.Deps = append([]Token(nil), p.Deps...)
	c.byTok[p.Token] = &entry{p: p}
	c.order = append(c.order, p.Token)
	return nil
}

// Has reports whether tok is registered
func (c *Container) Has(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byTok[tok]
	return ok
}

// Tokens returns registered tokens in registration order
func (c *Container) Tokens() []Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Token(nil), c.order...)
}

// Provider returns the registration for tok
func (c *Container) Provider(tok Token) (Provider, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byTok[tok]
	if !ok {
		return Provider{}, false
	}
	p := e.p
	p.Deps = append([]Token(nil), p.Deps...)
	return p, true
}

// Constructed returns singleton tokens in construction order
func (c *Container) Constructed() []Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Token(nil), c.built...)
}

// Resolve returns the instance for tok, constructing it if needed
func (c *Container) Resolve(ctx context.Context, tok Token) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, perr.Unavailablef("di: container closed")
	}
	return c.resolveLocked(ctx, tok, nil)
}

func (c *Container) resolveLocked(ctx context.Context, tok Token, stack []Token) (any, error) {
	e, ok := c.byTok[tok]
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("di: no provider for %q", tok), string(tok))
	}
	if e.done {
		return e.inst, nil
	}
	for i, s := range stack {
		if s == tok {
			return nil, perr.Cyclef("di: dependency cycle %s", path(append(slices.Clone(stack[i:]), tok)))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "di: construct %q", tok)
	}

	sc := &scoped{c: c, owner: tok, deps: e.p.Deps, stack: append(slices.Clone(stack), tok), live: true}
	start := time.Now()
	v, err := c.construct(ctx, e.p, sc)
	sc.live = false
	if err != nil {
		return nil, err
	}

	if e.p.Scope == Singleton {
		e.inst, e.done = v, true
		c.built = append(c.built, tok)
	}
	c.log.Debug().
		Str("token", string(tok)).
		Str("scope", e.p.Scope.String()).
		Dur("elapsed", time.Since(start)).
		Msg("provider constructed")
	return v, nil
}

func (c *Container) construct(ctx context.Context, p Provider, r Resolver) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, perr.WithField(perr.PanicErrf("di: constructor %q panicked: %v", p.Token, rec), string(p.Token))
		}
	}()

	v, err = p.New(ctx, r)
	if err != nil {
		code := perr.CodeOf(err)
		if code == perr.ErrorCodeUnknown {
			code = perr.ErrorCodeLifecycle
		}
		return nil, perr.Wrapf(err, code, "di: construct %q", p.Token)
	}
	if in, ok := v.(Initializer); ok {
		if err := in.OnInit(ctx); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeLifecycle, "di: init %q", p.Token)
		}
	}
	return v, nil
}

// Close shuts singletons down in reverse construction order and joins every error
// Calling Close again is a no-op
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.built) - 1; i >= 0; i-- {
		tok := c.built[i]
		e := c.byTok[tok]
		sd, ok := e.inst.(Shutdowner)
		if !ok {
			continue
		}
		if err := sd.OnShutdown(ctx); err != nil {
			c.log.Error().Err(err).Str("token", string(tok)).Msg("provider shutdown failed")
			errs = append(errs, perr.Wrapf(err, perr.ErrorCodeLifecycle, "di: shutdown %q", tok))
			continue
		}
		c.log.Debug().Str("token", string(tok)).Msg("provider shut down")
	}
	for _, tok := range c.built {
		e := c.byTok[tok]
		e.inst, e.done = nil, false
	}
	c.built = nil
	c.closed = true
	return stderrs.Join(errs...)
}

// CheckGraph walks the declared dependencies of every provider before anything
// is built. Unknown dependencies are not found errors and loops are cycle errors
func (c *Container) CheckGraph() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const (
		white = iota
		grey
		black
	)
	color := make(map[Token]int, len(c.order))
	var stack []Token

	var visit func(tok Token) error
	visit = func(tok Token) error {
		switch color[tok] {
		case grey:
			for i, s := range stack {
				if s == tok {
					return perr.Cyclef("di: dependency cycle %s", path(append(slices.Clone(stack[i:]), tok)))
				}
			}
		case black:
			return nil
		}
		color[tok] = grey
		stack = append(stack, tok)
		for _, d := range c.byTok[tok].p.Deps {
			if _, ok := c.byTok[d]; !ok {
				return perr.WithField(perr.NotFoundf("di: %q depends on unknown %q", tok, d), string(d))
			}
			if err := visit(d); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[tok] = black
		return nil
	}

	for _, tok := range c.order {
		if err := visit(tok); err != nil {
			return err
		}
	}
	return nil
}

// scoped is the resolver a constructor sees: only its declared deps are reachable
// and only while the constructor runs
type scoped struct {
	c     *Container
	owner Token
	deps  []Token
	stack []Token
	live  bool
}

func (s *scoped) Resolve(ctx context.Context, tok Token) (any, error) {
	if !s.live {
		return nil, perr.InvalidArgf("di: resolver for %q used after its constructor returned", s.owner)
	}
	for _, d := range s.deps {
		if d == tok {
			return s.c.resolveLocked(ctx, tok, s.stack)
		}
	}
	return nil, perr.WithField(perr.InvalidArgf("di: %q resolved undeclared dependency %q", s.owner, tok), string(tok))
}

func path(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = string(t)
	}
	return strings.Join(parts, " -> ")
}

// String lists the registered tokens, handy in logs
func (c *Container) String() string {
	return fmt.Sprintf("di.Container%v", c.Tokens())
}

// Restrict returns a resolver over c that only hands out deps
// The composition root gives one to every controller factory
func (c *Container) Restrict(owner string, deps []Token) Resolver {
	return &restricted{c: c, owner: owner, deps: append([]Token(nil), deps...)}
}

type restricted struct {
	c     *Container
	owner string
	deps  []Token
}

func (r *restricted) Resolve(ctx context.Context, tok Token) (any, error) {
	if !slices.Contains(r.deps, tok) {
		return nil, perr.WithField(perr.InvalidArgf("di: %q resolved undeclared dependency %q", r.owner, tok), string(tok))
	}
	return r.c.Resolve(ctx, tok)
}
