package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLRU(size int, ttl time.Duration) (*LRU[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v, want 2, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
}

func TestLRU_Expiry(t *testing.T) {
	c, clock := newTestLRU(10, time.Minute)
	c.Set("a", 1)
	clock.advance(30 * time.Second)
	c.Set("b", 2)

	clock.advance(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if got := c.Prune(); got != 0 {
		t.Errorf("Prune() = %d, want 0 after Get dropped a", got)
	}

	clock.advance(time.Minute)
	if got := c.Prune(); got != 1 {
		t.Errorf("Prune() = %d, want 1", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLRU_Add(t *testing.T) {
	c, clock := newTestLRU(10, time.Minute)

	if !c.Add("k", 1) {
		t.Fatal("first Add should store")
	}
	if c.Add("k", 2) {
		t.Error("second Add should report a live entry")
	}
	if v, _ := c.Get("k"); v != 1 {
		t.Errorf("Add must not overwrite, got %d", v)
	}

	clock.advance(2 * time.Minute)
	if !c.Add("k", 3) {
		t.Error("Add after expiry should store")
	}
}
