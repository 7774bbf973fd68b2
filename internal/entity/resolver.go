package entity

import (
	"context"
	"strconv"
	"strings"

	"ledger/internal/core"
)

// Resolution is what a resolver hands to the view. Resolved is false when
// navigation was redirected and no record is delivered.
type Resolution[T core.Identified] struct {
	Entity   T
	Resolved bool
}

// Resolver fetches the record named by the "id" route parameter, or builds
// a new one when there is none.
type Resolver[T core.Identified] struct {
	backend   Backend[T]
	resource  Resource[T]
	navigator Navigator
}

// NewResolver creates a resolver for resource.
func NewResolver[T core.Identified](backend Backend[T], resource Resource[T], navigator Navigator) *Resolver[T] {
	return &Resolver[T]{backend: backend, resource: resource, navigator: navigator}
}

// Resolve runs the resolution. A record that does not exist, including an
// id that is not a number, navigates to NotFoundRoute. Transport failures
// are returned untouched.
func (r *Resolver[T]) Resolve(ctx context.Context, params RouteParams) (Resolution[T], error) {
	raw := strings.TrimSpace(params["id"])
	if raw == "" {
		return Resolution[T]{Entity: r.resource.New(), Resolved: true}, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.navigator.Navigate(NotFoundRoute)
		return Resolution[T]{}, nil
	}

	resp, err := r.backend.Find(ctx, id)
	if err != nil {
		return Resolution[T]{}, err
	}
	if resp == nil || resp.Body == nil {
		r.navigator.Navigate(NotFoundRoute)
		return Resolution[T]{}, nil
	}
	return Resolution[T]{Entity: *resp.Body, Resolved: true}, nil
}
