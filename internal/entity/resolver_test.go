package entity

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
)

func TestResolverReturnsFoundRecord(t *testing.T) {
	backend := &fakeBackend{findBody: &core.Money{ID: core.Ptr(int64(123))}}
	nav := &fakeNavigator{}
	r := NewResolver[core.Money](backend, testResource(), nav)

	res, err := r.Resolve(context.Background(), RouteParams{"id": "123"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Resolved {
		t.Fatal("expected a resolved record")
	}
	if id, ok := res.Entity.Identifier(); !ok || id != 123 {
		t.Errorf("entity id = %d,%v", id, ok)
	}
	if len(backend.found) != 1 || backend.found[0] != 123 {
		t.Errorf("find calls = %v", backend.found)
	}
	if len(nav.calls) != 0 {
		t.Errorf("unexpected navigation %v", nav.calls)
	}
}

func TestResolverNewRecordWithoutID(t *testing.T) {
	backend := &fakeBackend{}
	nav := &fakeNavigator{}
	r := NewResolver[core.Money](backend, testResource(), nav)

	res, err := r.Resolve(context.Background(), RouteParams{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Resolved {
		t.Fatal("expected a new record")
	}
	if _, ok := res.Entity.Identifier(); ok {
		t.Error("new record must not have an id")
	}
	if len(backend.found) != 0 {
		t.Errorf("find must not be called, got %v", backend.found)
	}
}

func TestResolverNavigatesToNotFound(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		finds int
	}{
		{"missing record", "123", 1},
		{"non numeric id", "abc", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{}
			nav := &fakeNavigator{}
			r := NewResolver[core.Money](backend, testResource(), nav)

			res, err := r.Resolve(context.Background(), RouteParams{"id": tc.id})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Resolved {
				t.Error("nothing should be resolved")
			}
			if len(backend.found) != tc.finds {
				t.Errorf("find calls = %v, want %d", backend.found, tc.finds)
			}
			if len(nav.calls) != 1 || len(nav.calls[0]) != 1 || nav.calls[0][0] != NotFoundRoute {
				t.Errorf("navigation = %v, want [[404]]", nav.calls)
			}
		})
	}
}

func TestResolverPropagatesTransportErrors(t *testing.T) {
	boom := errors.New("boom")
	nav := &fakeNavigator{}
	r := NewResolver[core.Money](&fakeBackend{err: boom}, testResource(), nav)

	if _, err := r.Resolve(context.Background(), RouteParams{"id": "1"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(nav.calls) != 0 {
		t.Errorf("unexpected navigation %v", nav.calls)
	}
}
