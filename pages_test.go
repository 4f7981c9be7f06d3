package quill

import (
	"context"
	"errors"
	"testing"
)

const (
	dashedID  = "1f9e3b2a-8c4d-4e5f-a6b7-c8d9e0f1a2b3"
	compactID = "1f9e3b2a8c4d4e5fa6b7c8d9e0f1a2b3"
)

func TestPageGet_CachesByID(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("GET", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{}))

	ctx := context.Background()
	first, err := c.Pages().Get(ctx, dashedID)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}

	second, err := c.Pages().Get(ctx, dashedID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first != second {
		t.Error("expected the cached object on the second get")
	}

	if calls := api.calls("GET", "/v1/pages/"+dashedID); len(calls) != 1 {
		t.Errorf("expected 1 network fetch, got %d", len(calls))
	}

	stats := c.Pages().CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d/%d", stats.Hits, stats.Misses)
	}
}

func TestPageGet_CompactAndDashedIDsShareEntry(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("GET", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{}))

	ctx := context.Background()
	if _, err := c.Pages().Get(ctx, dashedID); err != nil {
		t.Fatal(err)
	}
	// The compact spelling hits the same cache entry: no second fetch, no
	// canned response for the compact path needed.
	if _, err := c.Pages().Get(ctx, compactID); err != nil {
		t.Fatalf("compact spelling missed the cache: %v", err)
	}

	if calls := api.calls("GET", "/v1/pages/"+dashedID); len(calls) != 1 {
		t.Errorf("expected a single fetch across both spellings, got %d", len(calls))
	}
}

func TestPageGet_InvalidateForcesRefetch(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("GET", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{}))

	ctx := context.Background()
	if _, err := c.Pages().Get(ctx, dashedID); err != nil {
		t.Fatal(err)
	}

	c.Pages().Invalidate(ctx, dashedID)

	if _, err := c.Pages().Get(ctx, dashedID); err != nil {
		t.Fatal(err)
	}
	if calls := api.calls("GET", "/v1/pages/"+dashedID); len(calls) != 2 {
		t.Errorf("expected a refetch after invalidation, got %d calls", len(calls))
	}
}

func TestPageGet_NotFound(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("GET", "/v1/pages/missing", 404,
		`{"code":"object_not_found","message":"page missing"}`)

	_, err := c.Pages().Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPageCreate_PopulatesCache(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("POST", "/v1/pages", 200, pageJSON(t, dashedID, map[string]any{}))

	ctx := context.Background()
	created, err := c.Pages().Create(ctx, "db1", map[string]any{
		"Name": map[string]any{"title": []map[string]string{{"plain_text": "New"}}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID() != dashedID {
		t.Errorf("unexpected id %q", created.ID())
	}

	// The created page is served from cache without a fetch.
	got, err := c.Pages().Get(ctx, dashedID)
	if err != nil {
		t.Fatal(err)
	}
	if got != created {
		t.Error("expected the created object from cache")
	}
	if calls := api.calls("GET", "/v1/pages/"+dashedID); len(calls) != 0 {
		t.Errorf("expected no fetch after create, got %d", len(calls))
	}
}

func TestPageUpdate_RefreshesCache(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("GET", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{}))
	api.respond("PATCH", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{
		"Done": map[string]any{"type": "checkbox", "checkbox": true},
	}))

	ctx := context.Background()
	stale, err := c.Pages().Get(ctx, dashedID)
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := c.Pages().Update(ctx, dashedID, map[string]any{
		"Done": map[string]any{"checkbox": true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if fresh == stale {
		t.Error("expected a new object after update")
	}

	got, err := c.Pages().Get(ctx, dashedID)
	if err != nil {
		t.Fatal(err)
	}
	if got != fresh {
		t.Error("later reads must observe the updated object")
	}
	if _, ok := got.Property("Done"); !ok {
		t.Error("updated property missing from cached page")
	}
}

func TestPageClearCache(t *testing.T) {
	c, api := newFakeClient(t)
	api.respond("GET", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{}))

	ctx := context.Background()
	if _, err := c.Pages().Get(ctx, dashedID); err != nil {
		t.Fatal(err)
	}

	c.Pages().ClearCache()

	if _, err := c.Pages().Get(ctx, dashedID); err != nil {
		t.Fatal(err)
	}
	if calls := api.calls("GET", "/v1/pages/"+dashedID); len(calls) != 2 {
		t.Errorf("expected a refetch after clear, got %d calls", len(calls))
	}

	// Counters survive the clear.
	stats := c.Pages().CacheStats()
	if stats.Misses != 2 {
		t.Errorf("expected 2 misses across both fetches, got %d", stats.Misses)
	}
}

func TestPageRelations_MemoizedPerPage(t *testing.T) {
	c, api := newFakeClient(t)
	const targetID = "22222222-2222-4222-8222-222222222222"

	api.respond("GET", "/v1/pages/"+dashedID, 200, pageJSON(t, dashedID, map[string]any{
		"Blocked": map[string]any{
			"type":     "relation",
			"relation": []map[string]string{{"id": targetID}},
		},
	}))
	api.respond("GET", "/v1/pages/"+targetID, 200, pageJSON(t, targetID, map[string]any{}))

	ctx := context.Background()
	p, err := c.Pages().Get(ctx, dashedID)
	if err != nil {
		t.Fatal(err)
	}

	targets, err := p.Relations(ctx, "Blocked")
	if err != nil {
		t.Fatalf("resolve relations: %v", err)
	}
	if len(targets) != 1 || targets[0].ID() != targetID {
		t.Fatalf("unexpected targets: %v", targets)
	}

	// Second resolution touches neither the network nor the client cache.
	hitsBefore := c.Pages().CacheStats().Hits
	again, err := p.Relations(ctx, "Blocked")
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0] != targets[0] {
		t.Error("expected memoized targets")
	}
	if c.Pages().CacheStats().Hits != hitsBefore {
		t.Error("memoized resolution must not consult the client cache")
	}
	if calls := api.calls("GET", "/v1/pages/"+targetID); len(calls) != 1 {
		t.Errorf("expected 1 target fetch, got %d", len(calls))
	}
}
