package entity

import (
	"context"
	"errors"
	"net/http"

	"ledger/internal/core"
	"ledger/internal/transport"
)

var (
	// ErrMissingIdentifier is returned by update calls on a record that was
	// never persisted.
	ErrMissingIdentifier = errors.New("record has no identifier")
	// ErrInvalidIdentifier is returned when an identifier cannot be parsed.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// Backend is the set of calls the screens need against one REST resource.
type Backend[T core.Identified] interface {
	Create(ctx context.Context, entity T) (*transport.Response[T], error)
	Update(ctx context.Context, entity T) (*transport.Response[T], error)
	PartialUpdate(ctx context.Context, entity T) (*transport.Response[T], error)
	// Find returns a response with a nil Body, and no error, when the record
	// does not exist.
	Find(ctx context.Context, id int64) (*transport.Response[T], error)
	Query(ctx context.Context, opts QueryOptions) (*transport.Response[[]T], error)
	Delete(ctx context.Context, id int64) (*transport.Response[struct{}], error)
}

// Service is the HTTP implementation of Backend for one resource.
type Service[T core.Identified] struct {
	client   *transport.Client
	resource Resource[T]
}

// NewService returns a service issuing requests for resource through client.
func NewService[T core.Identified](client *transport.Client, resource Resource[T]) *Service[T] {
	return &Service[T]{client: client, resource: resource}
}

// Create issues POST <resource>.
func (s *Service[T]) Create(ctx context.Context, entity T) (*transport.Response[T], error) {
	return transport.Do[T](ctx, s.client, transport.Request{
		Method:   http.MethodPost,
		Resource: s.resource.Path,
		Path:     s.resource.Path,
		Body:     entity,
	})
}

// Update issues PUT <resource>/<id>.
func (s *Service[T]) Update(ctx context.Context, entity T) (*transport.Response[T], error) {
	id, ok := entity.Identifier()
	if !ok {
		return nil, ErrMissingIdentifier
	}
	return transport.Do[T](ctx, s.client, transport.Request{
		Method:   http.MethodPut,
		Resource: s.resource.Path,
		Path:     s.resource.EntityPath(id),
		Body:     entity,
	})
}

// PartialUpdate issues PATCH <resource>/<id> with a merge-patch body; unset
// properties are left out and therefore left alone by the server.
func (s *Service[T]) PartialUpdate(ctx context.Context, entity T) (*transport.Response[T], error) {
	id, ok := entity.Identifier()
	if !ok {
		return nil, ErrMissingIdentifier
	}
	return transport.Do[T](ctx, s.client, transport.Request{
		Method:      http.MethodPatch,
		Resource:    s.resource.Path,
		Path:        s.resource.EntityPath(id),
		Body:        entity,
		ContentType: transport.MergePatchJSON,
	})
}

// Find issues GET <resource>/<id>.
func (s *Service[T]) Find(ctx context.Context, id int64) (*transport.Response[T], error) {
	return transport.Do[T](ctx, s.client, transport.Request{
		Method:        http.MethodGet,
		Resource:      s.resource.Path,
		Path:          s.resource.EntityPath(id),
		AllowNotFound: true,
	})
}

// Query issues GET <resource> with the options as query parameters.
func (s *Service[T]) Query(ctx context.Context, opts QueryOptions) (*transport.Response[[]T], error) {
	return transport.Do[[]T](ctx, s.client, transport.Request{
		Method:   http.MethodGet,
		Resource: s.resource.Path,
		Path:     s.resource.Path,
		Query:    opts.Values(),
	})
}

// Delete issues DELETE <resource>/<id>.
func (s *Service[T]) Delete(ctx context.Context, id int64) (*transport.Response[struct{}], error) {
	return transport.Do[struct{}](ctx, s.client, transport.Request{
		Method:   http.MethodDelete,
		Resource: s.resource.Path,
		Path:     s.resource.EntityPath(id),
	})
}

// AddToCollectionIfMissing merges candidates into a reference collection,
// see core.AddToCollectionIfMissing.
func (s *Service[T]) AddToCollectionIfMissing(collection []T, candidates ...*T) []T {
	return core.AddToCollectionIfMissing(collection, candidates...)
}
