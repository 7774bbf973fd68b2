package entity

import (
	"context"
	"log/slog"
	"sync/atomic"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/transport"
)

// SaveResult is delivered once per Save.
type SaveResult[T core.Identified] struct {
	Response *transport.Response[T]
	// Created is true when the record went through Create rather than Update.
	Created bool
	Err     error
}

// UpdateController drives the create/update form of one record.
//
// The saving flag is advisory: a Save issued while another one is in flight
// is dispatched as well.
type UpdateController[T core.Identified] struct {
	backend  Backend[T]
	resource Resource[T]
	history  History
	form     *Form[T]
	saving   atomic.Bool
}

// NewUpdateController creates a controller with an empty form.
func NewUpdateController[T core.Identified](backend Backend[T], resource Resource[T], history History) *UpdateController[T] {
	return &UpdateController[T]{
		backend:  backend,
		resource: resource,
		history:  history,
		form:     NewForm(resource.Fields),
	}
}

// Init fills the form from the resolved record.
func (c *UpdateController[T]) Init(entity T) {
	c.form.PatchValue(entity)
}

// Form exposes the bound form.
func (c *UpdateController[T]) Form() *Form[T] {
	return c.form
}

// IsSaving reports whether a save is in flight.
func (c *UpdateController[T]) IsSaving() bool {
	return c.saving.Load()
}

// Save builds the record from the form and dispatches Update when it has an
// identifier, Create otherwise. The saving flag is set before Save returns
// and cleared once the call completes, whatever its outcome; on success the
// controller goes back to the previous view before the result is delivered.
// A form that fails to build or validate is reported without any call.
func (c *UpdateController[T]) Save(ctx context.Context) <-chan SaveResult[T] {
	c.saving.Store(true)
	done := make(chan SaveResult[T], 1)

	entity, err := c.form.Entity(c.resource.New)
	if err == nil {
		err = c.form.Validate()
	}
	if err != nil {
		c.saving.Store(false)
		done <- SaveResult[T]{Err: err}
		close(done)
		return done
	}

	id, persisted := entity.Identifier()
	go func() {
		defer close(done)

		var (
			resp *transport.Response[T]
			err  error
		)
		if persisted {
			resp, err = c.backend.Update(ctx, entity)
		} else {
			resp, err = c.backend.Create(ctx, entity)
		}

		if err != nil {
			slog.WarnContext(ctx, "Entity save failed",
				applog.FieldEntity, c.resource.Name,
				applog.FieldError, err)
		} else {
			slog.DebugContext(ctx, "Entity save succeeded",
				applog.FieldEntity, c.resource.Name,
				applog.FieldEntityID, id)
			c.history.Back()
		}
		c.saving.Store(false)
		done <- SaveResult[T]{Response: resp, Created: !persisted, Err: err}
	}()
	return done
}
