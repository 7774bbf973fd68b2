package entity

import (
	"context"
	"net/http"
	"sync"

	"ledger/internal/core"
	"ledger/internal/transport"
)

func testResource() Resource[core.Money] {
	return Resource[core.Money]{
		Name:  "money",
		Path:  "api/monies",
		Title: "Monies",
		New:   func() core.Money { return core.Money{} },
		Fields: []Field[core.Money]{
			IDField(func(m *core.Money) **int64 { return &m.ID }),
			TextField("name", "Name", false, func(m *core.Money) **string { return &m.Name }),
			TextField("roll", "Roll", true, func(m *core.Money) **string { return &m.Roll }),
			IntegerField("income", "Income", true, func(m *core.Money) **int64 { return &m.Income }),
		},
	}
}

// fakeBackend records calls and answers from its fields. A non-nil gate
// blocks Create and Update until it is closed.
type fakeBackend struct {
	mu sync.Mutex

	created []core.Money
	updated []core.Money
	patched []core.Money
	found   []int64
	deleted []int64
	queries []QueryOptions

	findBody *core.Money
	list     []core.Money
	err      error
	gate     chan struct{}
}

func (f *fakeBackend) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeBackend) Create(_ context.Context, m core.Money) (*transport.Response[core.Money], error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, m)
	if f.err != nil {
		return nil, f.err
	}
	saved := m
	saved.ID = core.Ptr(int64(len(f.created)))
	return &transport.Response[core.Money]{StatusCode: http.StatusCreated, Body: &saved, TotalCount: -1}, nil
}

func (f *fakeBackend) Update(_ context.Context, m core.Money) (*transport.Response[core.Money], error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, m)
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response[core.Money]{StatusCode: http.StatusOK, Body: &m, TotalCount: -1}, nil
}

func (f *fakeBackend) PartialUpdate(_ context.Context, m core.Money) (*transport.Response[core.Money], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patched = append(f.patched, m)
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response[core.Money]{StatusCode: http.StatusOK, Body: &m, TotalCount: -1}, nil
}

func (f *fakeBackend) Find(_ context.Context, id int64) (*transport.Response[core.Money], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.found = append(f.found, id)
	if f.err != nil {
		return nil, f.err
	}
	if f.findBody == nil {
		return &transport.Response[core.Money]{StatusCode: http.StatusNotFound, TotalCount: -1}, nil
	}
	body := *f.findBody
	return &transport.Response[core.Money]{StatusCode: http.StatusOK, Body: &body, TotalCount: -1}, nil
}

func (f *fakeBackend) Query(_ context.Context, opts QueryOptions) (*transport.Response[[]core.Money], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, opts)
	if f.err != nil {
		return nil, f.err
	}
	list := append([]core.Money(nil), f.list...)
	return &transport.Response[[]core.Money]{StatusCode: http.StatusOK, Body: &list, TotalCount: int64(len(list))}, nil
}

func (f *fakeBackend) Delete(_ context.Context, id int64) (*transport.Response[struct{}], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response[struct{}]{StatusCode: http.StatusNoContent, TotalCount: -1}, nil
}

type fakeNavigator struct {
	mu    sync.Mutex
	calls [][]string
}

func (n *fakeNavigator) Navigate(commands ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, commands)
}

type fakeHistory struct {
	mu    sync.Mutex
	backs int
}

func (h *fakeHistory) Back() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backs++
}

func (h *fakeHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backs
}

type fakeModal struct {
	dismissed int
	closed    []string
}

func (m *fakeModal) Dismiss()            { m.dismissed++ }
func (m *fakeModal) Close(result string) { m.closed = append(m.closed, result) }
