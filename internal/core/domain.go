package core

import (
	"errors"
	"fmt"
)

type (
	// Identified is implemented by every entity record. The second return
	// value is false while the record has not been persisted yet.
	Identified interface {
		Identifier() (int64, bool)
	}

	Money struct {
		ID     *int64  `json:"id,omitempty"`
		Name   *string `json:"name,omitempty"`
		Roll   *string `json:"roll,omitempty"`
		Income *int64  `json:"income,omitempty"`
	}

	Income struct {
		ID     *int64  `json:"id,omitempty"`
		Name   *string `json:"name,omitempty"`
		Roll   *string `json:"roll,omitempty"`
		Income *int64  `json:"income,omitempty"`
	}
)

var (
	ErrRequired      = errors.New("field is required")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Identifier implements Identified.
func (m Money) Identifier() (int64, bool) { return MoneyIdentifier(m) }

// Identifier implements Identified.
func (i Income) Identifier() (int64, bool) { return IncomeIdentifier(i) }

func MoneyIdentifier(m Money) (int64, bool) {
	if m.ID == nil {
		return 0, false
	}
	return *m.ID, true
}

func IncomeIdentifier(i Income) (int64, bool) {
	if i.ID == nil {
		return 0, false
	}
	return *i.ID, true
}

// RequiredError reports a missing mandatory field. It matches ErrRequired
// with errors.Is.
func RequiredError(field string) error {
	return fmt.Errorf("%s: %w", field, ErrRequired)
}

// Ptr returns a pointer to v. Handy for building records in literals.
func Ptr[T any](v T) *T {
	return &v
}
