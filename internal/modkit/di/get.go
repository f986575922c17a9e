package di

import (
	"context"
	"reflect"

	perr "modhost/internal/platform/errors"
)

// Get resolves tok and asserts it to T
func Get[T any](ctx context.Context, r Resolver, tok Token) (T, error) {
	var zero T
	v, err := r.Resolve(ctx, tok)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, perr.WithField(
			perr.InvalidArgf("di: %q is %T, want %s", tok, v, reflect.TypeFor[T]()),
			string(tok),
		)
	}
	return out, nil
}

// MustGet is Get that panics on error
func MustGet[T any](ctx context.Context, r Resolver, tok Token) T {
	v, err := Get[T](ctx, r, tok)
	if err != nil {
		panic(err)
	}
	return v
}
