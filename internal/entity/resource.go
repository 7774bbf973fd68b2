// Package entity is the generic CRUD layer shared by every record type: the
// transport service, the route resolver, the update/create form controller
// and the delete confirmation dialog. A record type plugs in by describing
// itself with a Resource.
package entity

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/core"
)

// FieldKind tells forms how to render and parse a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindInteger
	// KindID is the hidden identifier field.
	KindID
)

// Field binds one scalar property of T to a form control.
type Field[T any] struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Get returns the value as form text and whether it is set.
	Get func(T) (string, bool)
	// Set parses value into the record; nil clears the property.
	Set func(*T, *string) error
}

// Resource describes one record type and the REST collection that owns it.
type Resource[T core.Identified] struct {
	// Name is the singular route prefix, e.g. "money".
	Name string
	// Path is the collection path relative to the API root, e.g. "api/monies".
	Path  string
	Title string
	// New builds an empty, not yet persisted record.
	New    func() T
	Fields []Field[T]
}

// EntityPath returns the path of a single record.
func (r Resource[T]) EntityPath(id int64) string {
	return r.Path + "/" + strconv.FormatInt(id, 10)
}

// Field looks a field up by name.
func (r Resource[T]) Field(name string) (Field[T], bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Validate checks the resource definition itself.
func (r Resource[T]) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New("resource name is required"))
	}
	if strings.TrimSpace(r.Path) == "" || strings.HasPrefix(r.Path, "/") {
		errs = append(errs, fmt.Errorf("resource %q: path must be relative and not empty", r.Name))
	}
	if r.New == nil {
		errs = append(errs, fmt.Errorf("resource %q: New is required", r.Name))
	}
	seen := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if f.Get == nil || f.Set == nil {
			errs = append(errs, fmt.Errorf("resource %q: field %q needs Get and Set", r.Name, f.Name))
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("resource %q: duplicate field %q", r.Name, f.Name))
		}
		seen[f.Name] = true
	}
	return errors.Join(errs...)
}

// IDField binds the identifier property.
func IDField[T any](ref func(*T) **int64) Field[T] {
	f := IntegerField("id", "ID", false, ref)
	f.Kind = KindID
	f.Set = func(t *T, value *string) error {
		if value == nil || strings.TrimSpace(*value) == "" {
			*ref(t) = nil
			return nil
		}
		id, err := strconv.ParseInt(strings.TrimSpace(*value), 10, 64)
		if err != nil {
			return fmt.Errorf("id: %w", ErrInvalidIdentifier)
		}
		*ref(t) = &id
		return nil
	}
	return f
}

// TextField binds an optional string property. Blank input clears it.
func TextField[T any](name, label string, required bool, ref func(*T) **string) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Kind:     KindText,
		Required: required,
		Get: func(t T) (string, bool) {
			p := *ref(&t)
			if p == nil {
				return "", false
			}
			return *p, true
		},
		Set: func(t *T, value *string) error {
			if value == nil || strings.TrimSpace(*value) == "" {
				*ref(t) = nil
				return nil
			}
			v := *value
			*ref(t) = &v
			return nil
		},
	}
}

// IntegerField binds an optional integer property. Blank input clears it.
func IntegerField[T any](name, label string, required bool, ref func(*T) **int64) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Kind:     KindInteger,
		Required: required,
		Get: func(t T) (string, bool) {
			p := *ref(&t)
			if p == nil {
				return "", false
			}
			return core.FormatIncome(p), true
		},
		Set: func(t *T, value *string) error {
			if value == nil || strings.TrimSpace(*value) == "" {
				*ref(t) = nil
				return nil
			}
			v, err := core.ParseIncome(*value)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*ref(t) = &v
			return nil
		},
	}
}

// RouteParams are the navigation parameters of a route, e.g. {"id": "123"}.
type RouteParams map[string]string

// QueryOptions are passed through to the list endpoint untouched.
type QueryOptions struct {
	Page    int
	Size    int
	Sort    []string
	Filters url.Values
}

// Values encodes the options as query parameters. Page is sent whenever a
// size or a non-zero page is given; sort keys keep their order.
func (o QueryOptions) Values() url.Values {
	v := url.Values{}
	for key, values := range o.Filters {
		if key == "sort" {
			continue
		}
		v[key] = append([]string(nil), values...)
	}
	if o.Page > 0 || o.Size > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		v.Set("size", strconv.Itoa(o.Size))
	}
	for _, s := range o.Sort {
		v.Add("sort", s)
	}
	return v
}
