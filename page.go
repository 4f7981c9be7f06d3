package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/quillhq/quill/internal/domain/page"
)

// Parent is a reference to the object a page belongs to.
type Parent struct {
	Type       string
	DatabaseID string
	PageID     string
}

// Page is one document returned by the API. Property payloads stay raw for
// the caller's own mapping; only the envelope is interpreted here.
//
// Each page carries a local cache of resolved relation targets on top of
// the client-wide cache, so repeated traversal of the same relation is free.
type Page struct {
	p      page.Page
	raw    json.RawMessage
	client *Client

	mu       sync.Mutex
	resolved map[string][]*Page
}

func newPage(c *Client, p page.Page, raw json.RawMessage) *Page {
	return &Page{p: p, raw: raw, client: c}
}

// ID returns the page identifier as reported by the server.
func (p *Page) ID() string { return p.p.ID }

// CreatedTime returns when the page was created.
func (p *Page) CreatedTime() time.Time { return p.p.CreatedTime }

// LastEditedTime returns when the page was last edited.
func (p *Page) LastEditedTime() time.Time { return p.p.LastEditedTime }

// Archived reports whether the page is archived.
func (p *Page) Archived() bool { return p.p.Archived }

// URL returns the page's web URL.
func (p *Page) URL() string { return p.p.URL }

// Parent returns the page's parent reference.
func (p *Page) Parent() Parent {
	return Parent{
		Type:       p.p.Parent.Type,
		DatabaseID: p.p.Parent.DatabaseID,
		PageID:     p.p.Parent.PageID,
	}
}

// Property returns the raw JSON payload of one property.
func (p *Page) Property(name string) (json.RawMessage, bool) {
	raw, ok := p.p.Properties[name]
	return raw, ok
}

// Properties returns the raw property payloads keyed by property name.
func (p *Page) Properties() map[string]json.RawMessage { return p.p.Properties }

// Raw returns the page's full JSON as received from the server.
func (p *Page) Raw() json.RawMessage { return p.raw }

// Relations resolves the target pages of a relation property. Targets are
// fetched through the client's page cache and memoized on this page, so a
// second call performs no lookups at all.
func (p *Page) Relations(ctx context.Context, property string) ([]*Page, error) {
	if p.client == nil {
		return nil, fmt.Errorf("quill: page is not attached to a client")
	}

	p.mu.Lock()
	if cached, ok := p.resolved[property]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	ids := p.p.RelationIDs(property)
	targets := make([]*Page, 0, len(ids))
	for _, id := range ids {
		target, err := p.client.Pages().Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve relation %q: %w", property, err)
		}
		targets = append(targets, target)
	}

	p.mu.Lock()
	if p.resolved == nil {
		p.resolved = make(map[string][]*Page)
	}
	p.resolved[property] = targets
	p.mu.Unlock()
	return targets, nil
}
