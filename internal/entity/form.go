package entity

import (
	"errors"
	"net/url"
	"strings"

	"ledger/internal/core"
)

// Form holds the raw text of every field of a record while it is edited.
// A field missing from the form is unset.
type Form[T core.Identified] struct {
	fields []Field[T]
	values map[string]string
}

// NewForm creates an empty form over fields.
func NewForm[T core.Identified](fields []Field[T]) *Form[T] {
	return &Form[T]{
		fields: fields,
		values: make(map[string]string, len(fields)),
	}
}

// Fields returns the field definitions in display order.
func (f *Form[T]) Fields() []Field[T] {
	return f.fields
}

// PatchValue replaces every field value with the one held by entity.
func (f *Form[T]) PatchValue(entity T) {
	for _, field := range f.fields {
		if v, ok := field.Get(entity); ok {
			f.values[field.Name] = v
		} else {
			delete(f.values, field.Name)
		}
	}
}

// Set assigns the raw value of a known field. Unknown names are ignored.
func (f *Form[T]) Set(name, value string) {
	if !f.has(name) {
		return
	}
	f.values[name] = value
}

// Get returns the raw value of a field, "" when unset.
func (f *Form[T]) Get(name string) string {
	return f.values[name]
}

// Bind copies the known fields present in values, e.g. a posted HTML form.
// Fields absent from values keep their current content.
func (f *Form[T]) Bind(values url.Values) {
	for _, field := range f.fields {
		if _, ok := values[field.Name]; ok {
			f.values[field.Name] = strings.TrimSpace(values.Get(field.Name))
		}
	}
}

// Values returns the set fields as url.Values.
func (f *Form[T]) Values() url.Values {
	out := url.Values{}
	for _, field := range f.fields {
		if v, ok := f.values[field.Name]; ok {
			out.Set(field.Name, v)
		}
	}
	return out
}

// Validate reports every required field left blank.
func (f *Form[T]) Validate() error {
	var errs []error
	for _, field := range f.fields {
		if field.Required && strings.TrimSpace(f.values[field.Name]) == "" {
			errs = append(errs, core.RequiredError(field.Name))
		}
	}
	return errors.Join(errs...)
}

// Entity builds a record from the form, starting from newFn().
func (f *Form[T]) Entity(newFn func() T) (T, error) {
	entity := newFn()
	var errs []error
	for _, field := range f.fields {
		var value *string
		if v, ok := f.values[field.Name]; ok {
			value = &v
		}
		if err := field.Set(&entity, value); err != nil {
			errs = append(errs, err)
		}
	}
	return entity, errors.Join(errs...)
}

func (f *Form[T]) has(name string) bool {
	for _, field := range f.fields {
		if field.Name == name {
			return true
		}
	}
	return false
}
