package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/quillhq/quill/internal/domain/page"
	"github.com/quillhq/quill/internal/retry"
)

// CacheStats are the running counters of the client's page cache.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Size    int
	HitRate float64
}

// PageService fetches and mutates pages, backed by the client's cache.
type PageService struct {
	client *Client
}

// Get fetches a page by ID. The client's cache is consulted first (memory,
// then the shared store when configured); a network fetch populates both.
// Cached entries never expire: call Invalidate after external writes.
func (s *PageService) Get(ctx context.Context, id string) (p *Page, err error) {
	key := page.NormalizeID(id)

	if cached, ok := s.client.pageCache.Get(key); ok {
		return cached, nil
	}

	if s.client.shared != nil {
		if raw, ok := s.client.shared.Get(ctx, key); ok {
			if p, err := s.decodeAndCache(key, raw); err == nil {
				return p, nil
			}
			// Corrupt shared entry: fall through to a real fetch.
			s.client.shared.Invalidate(ctx, key)
		}
	}

	start := time.Now()
	defer func() { s.client.obs.observe("page.get", start, err) }()

	path := "/v1/pages/" + url.PathEscape(id)
	raw, err := retry.Do(ctx, s.client.executor, func(ctx context.Context) ([]byte, error) {
		return s.client.transport.Do(ctx, "GET", path, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("get page %q: %w", id, err)
	}

	p, err = s.decodeAndCache(key, raw)
	if err != nil {
		return nil, fmt.Errorf("get page %q: %w", id, err)
	}
	if s.client.shared != nil {
		s.client.shared.Set(ctx, key, raw)
	}
	return p, nil
}

func (s *PageService) decodeAndCache(key string, raw json.RawMessage) (*Page, error) {
	dp, err := page.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	p := newPage(s.client, dp, raw)
	s.client.pageCache.Set(key, p)
	return p, nil
}

// createRequest is the wire body of a page creation.
type createRequest struct {
	Parent     map[string]string `json:"parent"`
	Properties map[string]any    `json:"properties"`
}

// Create creates a page in a database and caches the result.
func (s *PageService) Create(ctx context.Context, databaseID string, properties map[string]any) (p *Page, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("page.create", start, err) }()

	req := createRequest{
		Parent:     map[string]string{"database_id": databaseID},
		Properties: properties,
	}
	raw, err := retry.Do(ctx, s.client.executor, func(ctx context.Context) ([]byte, error) {
		return s.client.transport.Do(ctx, "POST", "/v1/pages", req)
	})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	p, err = s.decodeFresh(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return p, nil
}

// updateRequest is the wire body of a page property update.
type updateRequest struct {
	Properties map[string]any `json:"properties"`
}

// Update patches a page's properties. The cached entry is replaced so later
// reads observe the new state.
func (s *PageService) Update(ctx context.Context, id string, properties map[string]any) (p *Page, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("page.update", start, err) }()

	path := "/v1/pages/" + url.PathEscape(id)
	raw, err := retry.Do(ctx, s.client.executor, func(ctx context.Context) ([]byte, error) {
		return s.client.transport.Do(ctx, "PATCH", path, updateRequest{Properties: properties})
	})
	if err != nil {
		return nil, fmt.Errorf("update page %q: %w", id, err)
	}

	p, err = s.decodeFresh(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("update page %q: %w", id, err)
	}
	return p, nil
}

// decodeFresh decodes a mutation response and refreshes both cache levels.
func (s *PageService) decodeFresh(ctx context.Context, raw json.RawMessage) (*Page, error) {
	dp, err := page.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	key := page.NormalizeID(dp.ID)
	p := newPage(s.client, dp, raw)
	s.client.pageCache.Set(key, p)
	if s.client.shared != nil {
		s.client.shared.Set(ctx, key, raw)
	}
	return p, nil
}

// Invalidate drops a page from both cache levels.
func (s *PageService) Invalidate(ctx context.Context, id string) {
	key := page.NormalizeID(id)
	s.client.pageCache.Invalidate(key)
	if s.client.shared != nil {
		s.client.shared.Invalidate(ctx, key)
	}
}

// ClearCache drops every cached page from the in-memory cache. The shared
// store is left alone: other processes may still rely on it.
func (s *PageService) ClearCache() {
	s.client.pageCache.Clear()
}

// CacheStats returns the page cache counters.
func (s *PageService) CacheStats() CacheStats {
	st := s.client.pageCache.Stats()
	return CacheStats{
		Hits:    st.Hits,
		Misses:  st.Misses,
		Size:    st.Size,
		HitRate: st.HitRate(),
	}
}
