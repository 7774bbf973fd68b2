package services

import (
	"context"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/entity"
	applog "ledger/internal/log"
	"ledger/internal/transport"
)

// Publishing wraps a Backend and announces every successful write on the
// broker. The remote API is the source of truth: a failed publish is logged
// and never fails the write.
type Publishing[T core.Identified] struct {
	entity.Backend[T]
	name      string
	publisher amqp.Publisher
}

// NewPublishing decorates next. A nil publisher disables events.
func NewPublishing[T core.Identified](next entity.Backend[T], name string, publisher amqp.Publisher) *Publishing[T] {
	return &Publishing[T]{Backend: next, name: name, publisher: publisher}
}

// Create creates the record and publishes a created event
func (s *Publishing[T]) Create(ctx context.Context, e T) (*transport.Response[T], error) {
	resp, err := s.Backend.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.publishSaved(ctx, amqp.ActionCreated, resp, e)
	return resp, nil
}

// Update replaces the record and publishes an updated event
func (s *Publishing[T]) Update(ctx context.Context, e T) (*transport.Response[T], error) {
	resp, err := s.Backend.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	s.publishSaved(ctx, amqp.ActionUpdated, resp, e)
	return resp, nil
}

// PartialUpdate patches the record and publishes a patched event
func (s *Publishing[T]) PartialUpdate(ctx context.Context, e T) (*transport.Response[T], error) {
	resp, err := s.Backend.PartialUpdate(ctx, e)
	if err != nil {
		return nil, err
	}
	s.publishSaved(ctx, amqp.ActionPatched, resp, e)
	return resp, nil
}

// Delete deletes the record and publishes a deleted event
func (s *Publishing[T]) Delete(ctx context.Context, id int64) (*transport.Response[struct{}], error) {
	resp, err := s.Backend.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, amqp.ActionDeleted, id)
	return resp, nil
}

// publishSaved prefers the identifier the server answered with; a create
// request never carries one.
func (s *Publishing[T]) publishSaved(ctx context.Context, action string, resp *transport.Response[T], sent T) {
	if resp != nil && resp.Body != nil {
		if id, ok := (*resp.Body).Identifier(); ok {
			s.publish(ctx, action, id)
			return
		}
	}
	if id, ok := sent.Identifier(); ok {
		s.publish(ctx, action, id)
		return
	}
	slog.WarnContext(ctx, "Saved record has no identifier, skipping event",
		applog.FieldEntity, s.name,
		applog.FieldAction, action)
}

func (s *Publishing[T]) publish(ctx context.Context, action string, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping entity event",
			applog.FieldEntity, s.name,
			applog.FieldAction, action)
		return
	}
	if err := s.publisher.PublishEntityEvent(ctx, s.name, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entity event",
			applog.FieldEntity, s.name,
			applog.FieldAction, action,
			applog.FieldEntityID, id,
			applog.FieldError, err)
	}
}
