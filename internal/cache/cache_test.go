package cache

import (
	"context"
	"testing"

	"github.com/quillhq/quill/internal/kv/memory"
)

func TestCache_HitMissAccounting(t *testing.T) {
	c := New[string]("pages", nil)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", "alpha")
	v, ok := c.Get("a")
	if !ok || v != "alpha" {
		t.Fatalf("expected cached value, got %q ok=%v", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected miss for unknown key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("expected 1 hit / 2 misses, got %d/%d", stats.Hits, stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("expected size 1, got %d", stats.Size)
	}
	if got, want := stats.HitRate(), 1.0/3.0; got != want {
		t.Errorf("expected hit rate %f, got %f", want, got)
	}
}

func TestCache_SetOverwrites(t *testing.T) {
	c := New[int]("pages", nil)
	c.Set("a", 1)
	c.Set("a", 2)

	v, ok := c.Get("a")
	if !ok || v != 2 {
		t.Errorf("expected overwritten value 2, got %d", v)
	}
	if c.Stats().Size != 1 {
		t.Errorf("overwrite must not grow the cache, size=%d", c.Stats().Size)
	}
}

func TestCache_InvalidateIsExplicit(t *testing.T) {
	c := New[string]("pages", nil)
	c.Set("a", "alpha")
	c.Set("b", "beta")

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated entry must be gone")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("other entries must survive invalidation")
	}

	// Invalidating a missing key is a no-op.
	c.Invalidate("nope")
}

func TestCache_ClearKeepsCounters(t *testing.T) {
	c := New[string]("pages", nil)
	c.Set("a", "alpha")
	c.Get("a")
	c.Get("b")

	c.Clear()

	stats := c.Stats()
	if stats.Size != 0 {
		t.Errorf("expected empty cache after clear, size=%d", stats.Size)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("clear must keep counters, got %d/%d", stats.Hits, stats.Misses)
	}
}

func TestStats_HitRateEmpty(t *testing.T) {
	if r := (Stats{}).HitRate(); r != 0 {
		t.Errorf("expected 0 hit rate with no lookups, got %f", r)
	}
}

func TestShared_RoundTrip(t *testing.T) {
	store := memory.NewStore()
	defer store.Close()
	s := NewShared(store, "quill:page:", nil)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "p1"); ok {
		t.Fatal("expected miss on empty store")
	}

	s.Set(ctx, "p1", []byte(`{"id":"p1"}`))
	data, ok := s.Get(ctx, "p1")
	if !ok || string(data) != `{"id":"p1"}` {
		t.Fatalf("expected stored payload, got %q ok=%v", data, ok)
	}

	s.Invalidate(ctx, "p1")
	if _, ok := s.Get(ctx, "p1"); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestShared_KeysArePrefixed(t *testing.T) {
	store := memory.NewStore()
	defer store.Close()
	s := NewShared(store, "quill:page:", nil)
	ctx := context.Background()

	s.Set(ctx, "p1", []byte("x"))
	if _, err := store.Get(ctx, "quill:page:p1"); err != nil {
		t.Errorf("expected prefixed key in backing store: %v", err)
	}
}
