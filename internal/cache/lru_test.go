package cache

import (
	"strings"
	"testing"
	"time"
)

func TestLRUCache_GetSetDelete(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used and gets evicted.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d", c.Size())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Fatalf("stats = %d hits %d misses", hits, misses)
	}
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute).WithClock(func() time.Time { return now })

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(30 * time.Second)
	c.Set("y", 3) // refreshes y
	now = now.Add(45 * time.Second)

	if _, ok := c.Get("x"); ok {
		t.Fatal("x should have expired")
	}
	if v, ok := c.Get("y"); !ok || v != 3 {
		t.Fatalf("y = %d, %v", v, ok)
	}

	now = now.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRUCache_DeleteFuncAndClear(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("tx:1", 1)
	c.Set("tx:2", 2)
	c.Set("all", 3)

	if n := c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "tx:") }); n != 2 {
		t.Fatalf("DeleteFunc removed %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d", c.Size())
	}
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size() after Clear = %d", c.Size())
	}
}

func TestManager_CleanNowAndStop(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second).WithClock(func() time.Time { return now })
	c.Set("a", 1)

	m := NewManager()
	m.Register("test", c)
	m.StartCleanup(time.Hour)

	now = now.Add(time.Minute)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("CleanNow() = %d", n)
	}
	m.Stop()
	m.Stop()
}
