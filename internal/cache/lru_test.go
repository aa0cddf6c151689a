package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Fatal("empty cache should miss")
	}

	c.Set("a", "one")
	got, found := c.Get("a")
	if !found || got != "one" {
		t.Fatalf("expected hit with %q, got %q (found=%v)", "one", got, found)
	}

	// Overwriting a key replaces the value without growing the cache
	c.Set("a", "two")
	got, _ = c.Get("a")
	if got != "two" {
		t.Fatalf("expected replaced value, got %q", got)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" becomes the eviction candidate
	c.Get("a")
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Fatal("least recently used entry should be evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Fatal("recently used entry should survive")
	}
	if _, found := c.Get("c"); !found {
		t.Fatal("new entry should be present")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Fatal("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be dropped on access, size %d", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestPurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Size() != 0 {
		t.Fatalf("expected empty cache, size %d", c.Size())
	}
	if _, found := c.Get("a"); found {
		t.Fatal("purged entry should miss")
	}

	// The cache stays usable after a purge
	c.Set("c", 3)
	if got, found := c.Get("c"); !found || got != 3 {
		t.Fatalf("expected hit after purge, got %d (found=%v)", got, found)
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	c.Delete("a") // deleting twice is harmless

	if _, found := c.Get("a"); found {
		t.Fatal("deleted entry should miss")
	}
}
