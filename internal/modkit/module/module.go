// Package module defines the declarative module descriptor read by the composition root
//
// A Descriptor is built once, usually as a package level var, and never changes
// afterwards. It does not check its own references: cycles, unknown
// dependencies and duplicate tokens are reported by modkit.Compose.
package module

import (
	"context"
	"net/http"

	"modhost/internal/modkit/di"
	"modhost/internal/modkit/httpkit"
)

// Controller owns a set of routes
type Controller interface {
	MountRoutes(r httpkit.Router)
}

// ControllerFactory builds a controller from its declared dependencies
type ControllerFactory func(ctx context.Context, r di.Resolver) (Controller, error)

// ControllerRef names a controller and how to build it
type ControllerRef struct {
	Name string            `json:"name" validate:"required,ident"`
	Deps []di.Token        `json:"deps" validate:"dive,ident"`
	New  ControllerFactory `json:"-" validate:"required"`
}

// ControllerOf is sugar for a typed controller constructor
func ControllerOf[C Controller](name string, fn func(ctx context.Context, r di.Resolver) (C, error), deps ...di.Token) ControllerRef {
	ref := ControllerRef{Name: name, Deps: deps}
	if fn != nil {
		ref.New = func(ctx context.Context, r di.Resolver) (Controller, error) {
			c, err := fn(ctx, r)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return ref
}

// Ref points at an imported module
// Forward refs are resolved when the descriptor is read, so two package level
// modules can name each other
type Ref struct {
	get func() *Descriptor
}

// Import references an existing descriptor
func Import(d *Descriptor) Ref { return Ref{get: func() *Descriptor { return d }} }

// Forward references a descriptor that may not be initialized yet
func Forward(fn func() *Descriptor) Ref { return Ref{get: fn} }

// Resolve returns the referenced descriptor, nil when the ref is empty
func (r Ref) Resolve() *Descriptor {
	if r.get == nil {
		return nil
	}
	return r.get()
}

// Descriptor is an immutable module declaration
type Descriptor struct {
	name        string
	prefix      string
	imports     []Ref
	controllers []ControllerRef
	providers   []di.Provider
	mw          []func(http.Handler) http.Handler
}

// Option configures a Descriptor at construction time
type Option func(*Descriptor)

// WithImports appends imported modules in order
func WithImports(refs ...Ref) Option {
	return func(d *Descriptor) { d.imports = append(d.imports, refs...) }
}

// WithControllers appends controllers
func WithControllers(cs ...ControllerRef) Option {
	return func(d *Descriptor) { d.controllers = append(d.controllers, cs...) }
}

// WithProviders appends providers
func WithProviders(ps ...di.Provider) Option {
	return func(d *Descriptor) { d.providers = append(d.providers, ps...) }
}

// WithPrefix mounts the module controllers under prefix
func WithPrefix(prefix string) Option {
	return func(d *Descriptor) { d.prefix = prefix }
}

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(d *Descriptor) { d.mw = append(d.mw, mw...) }
}

// New builds a descriptor
func New(name string, opts ...Option) *Descriptor {
	d := &Descriptor{name: name}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Name returns the module name
func (d *Descriptor) Name() string { return d.name }

// Description is a read-only copy of a descriptor
type Description struct {
	Name        string
	Prefix      string
	Imports     []*Descriptor
	Controllers []ControllerRef
	Providers   []di.Provider
	Middlewares []func(http.Handler) http.Handler
}

// Describe returns the declared collections. Every call returns fresh slices
// with equal contents; imports keep their order and unresolvable refs stay nil
func (d *Descriptor) Describe() Description {
	imports := make([]*Descriptor, len(d.imports))
	for i, r := range d.imports {
		imports[i] = r.Resolve()
	}

	controllers := make([]ControllerRef, len(d.controllers))
	for i, c := range d.controllers {
		c.Deps = append([]di.Token(nil), c.Deps...)
		controllers[i] = c
	}

	providers := make([]di.Provider, len(d.providers))
	for i, p := range d.providers {
		p.Deps = append([]di.Token(nil), p.Deps...)
		providers[i] = p
	}

	return Description{
		Name:        d.name,
		Prefix:      d.prefix,
		Imports:     imports,
		Controllers: controllers,
		Providers:   providers,
		Middlewares: append([]func(http.Handler) http.Handler{}, d.mw...),
	}
}

// ControllerNames lists controller names in declaration order
func (ds Description) ControllerNames() []string {
	out := make([]string, len(ds.Controllers))
	for i, c := range ds.Controllers {
		out[i] = c.Name
	}
	return out
}

// ProviderTokens lists provider tokens in declaration order
func (ds Description) ProviderTokens() []di.Token {
	out := make([]di.Token, len(ds.Providers))
	for i, p := range ds.Providers {
		out[i] = p.Token
	}
	return out
}
