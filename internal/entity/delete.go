package entity

import (
	"context"

	"ledger/internal/core"
)

// DeleteDialog asks for confirmation before deleting a record.
type DeleteDialog[T core.Identified] struct {
	backend Backend[T]
	modal   Modal
	// Entity is the record shown in the dialog.
	Entity *T
}

// NewDeleteDialog creates a dialog hosted by modal.
func NewDeleteDialog[T core.Identified](backend Backend[T], modal Modal, entity *T) *DeleteDialog[T] {
	return &DeleteDialog[T]{backend: backend, modal: modal, Entity: entity}
}

// Cancel dismisses the dialog without side effects.
func (d *DeleteDialog[T]) Cancel() {
	d.modal.Dismiss()
}

// ConfirmDelete deletes the record and closes the dialog with DeletedResult.
// On failure the error is returned and the dialog stays open.
func (d *DeleteDialog[T]) ConfirmDelete(ctx context.Context, id int64) error {
	if _, err := d.backend.Delete(ctx, id); err != nil {
		return err
	}
	d.modal.Close(DeletedResult)
	return nil
}
