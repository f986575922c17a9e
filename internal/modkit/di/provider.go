// Package di is an explicit provider registry
//
// Providers are registered under a Token together with the tokens they
// depend on. A constructor only sees the dependencies it declared, so the
// graph the composition root checks is the graph that runs.
package di

import (
	"context"
	"fmt"
)

// Token identifies a provider
type Token string

// Scope controls instance reuse
type Scope uint8

const (
	// Singleton providers are constructed once per container
	Singleton Scope = iota
	// Transient providers are constructed on every resolution
	Transient
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// Resolver hands out instances by token
type Resolver interface {
	Resolve(ctx context.Context, tok Token) (any, error)
}

// Constructor builds an instance from its declared dependencies
type Constructor func(ctx context.Context, r Resolver) (any, error)

// Provider describes how to build one injectable value
type Provider struct {
	Token Token       `json:"token" validate:"required,ident"`
	Deps  []Token     `json:"deps" validate:"dive,ident"`
	Scope Scope       `json:"scope" validate:"lte=1"`
	New   Constructor `json:"-" validate:"required"`
}

// Initializer is implemented by instances that need a hook after construction
type Initializer interface {
	OnInit(ctx context.Context) error
}

// Shutdowner is implemented by singletons that hold resources
type Shutdowner interface {
	OnShutdown(ctx context.Context) error
}

// Value registers an already built value as a singleton
func Value[T any](tok Token, v T) Provider {
	return Provider{
		Token: tok,
		New:   func(context.Context, Resolver) (any, error) { return v, nil },
	}
}

// Factory registers a typed singleton constructor
func Factory[T any](tok Token, fn func(ctx context.Context, r Resolver) (T, error), deps ...Token) Provider {
	return Provider{Token: tok, Deps: deps, New: erase(fn)}
}

// TransientFactory registers a typed constructor that runs on every resolution
func TransientFactory[T any](tok Token, fn func(ctx context.Context, r Resolver) (T, error), deps ...Token) Provider {
	return Provider{Token: tok, Deps: deps, Scope: Transient, New: erase(fn)}
}

func erase[T any](fn func(context.Context, Resolver) (T, error)) Constructor {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, r Resolver) (any, error) {
		v, err := fn(ctx, r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
