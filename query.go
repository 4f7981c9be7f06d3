package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/quillhq/quill/internal/domain/filter"
	"github.com/quillhq/quill/internal/domain/page"
	"github.com/quillhq/quill/internal/domain/query"
	"github.com/quillhq/quill/internal/paginate"
	"github.com/quillhq/quill/internal/retry"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// defaultPageSize is the page size requested when no limit shrinks it.
const defaultPageSize = 100

// Query is a fluent builder for filtered, sorted queries against one
// database. Filters compose with implicit AND; there is no OR combinator.
//
// Validation failures (unknown property, unsupported operator, bad
// direction or limit) stick to the builder and surface from the terminal
// methods before any network call is made.
type Query struct {
	client     *Client
	databaseID string
	schema     Schema

	spec query.Spec
	err  error
}

func newQuery(c *Client, databaseID string, sch Schema) *Query {
	return &Query{client: c, databaseID: databaseID, schema: sch}
}

// Filter appends one filter expression. field carries an optional
// double-underscore operator suffix; a bare property name means equality:
//
//	q.Filter("Status", "Done")          // equality
//	q.Filter("Priority__gte", 5)        // ordering comparison
//	q.Filter("Due__before", "2026-01-01")
//	q.Filter("Assignee__is_null", nil)
func (q *Query) Filter(field string, value any) *Query {
	if q.err != nil {
		return q
	}
	property, op := filter.ParseField(field)
	node, err := q.schema.tr.Translate(property, op, value)
	if err != nil {
		q.err = fmt.Errorf("quill: filter %q: %w", field, err)
		return q
	}
	q.spec.AddFilter(node)
	return q
}

// Sort appends a sort spec. Earlier sorts take precedence on ties.
func (q *Query) Sort(property string, direction Direction) *Query {
	if q.err != nil {
		return q
	}
	srt, err := query.NewSort(property, query.Direction(direction))
	if err != nil {
		q.err = fmt.Errorf("quill: sort %q: %w", property, err)
		return q
	}
	q.spec.AddSort(srt)
	return q
}

// Limit caps the number of yielded items client-side. Page fetches shrink
// to the cap so no superfluous trailing page is requested.
func (q *Query) Limit(n int) *Query {
	if q.err != nil {
		return q
	}
	if err := q.spec.SetLimit(n); err != nil {
		q.err = fmt.Errorf("quill: %w", err)
		return q
	}
	return q
}

// Err returns the first validation error recorded by the builder.
func (q *Query) Err() error { return q.err }

// queryRequest is the wire body of one page fetch: the fixed filter/sort
// body plus the evolving cursor.
type queryRequest struct {
	Filter      json.RawMessage `json:"filter,omitempty"`
	Sorts       json.RawMessage `json:"sorts,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size,omitempty"`
}

// envelope mirrors the pagination envelope of the query endpoint.
type envelope struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// Iter executes the query lazily. The request body is serialized once; each
// page fetch goes through the retry executor and updates the client's rate
// limit bookkeeping. Stopping early issues no further fetches.
func (q *Query) Iter(ctx context.Context) (*Iter, error) {
	if q.err != nil {
		return nil, q.err
	}

	body, err := q.spec.Build()
	if err != nil {
		return nil, fmt.Errorf("quill: %w", err)
	}

	var filterJSON, sortsJSON json.RawMessage
	if body.Filter != nil {
		if filterJSON, err = json.Marshal(body.Filter); err != nil {
			return nil, fmt.Errorf("quill: serialize filter: %w", err)
		}
	}
	if len(body.Sorts) > 0 {
		if sortsJSON, err = json.Marshal(body.Sorts); err != nil {
			return nil, fmt.Errorf("quill: serialize sorts: %w", err)
		}
	}

	limit := q.spec.Limit()
	path := "/v1/databases/" + url.PathEscape(q.databaseID) + "/query"
	fetched := 0

	fetch := func(ctx context.Context, cursor string) (paginate.Page[*Page], error) {
		pageSize := defaultPageSize
		if limit > 0 && limit-fetched < pageSize {
			pageSize = limit - fetched
		}
		req := queryRequest{
			Filter:      filterJSON,
			Sorts:       sortsJSON,
			StartCursor: cursor,
			PageSize:    pageSize,
		}

		start := time.Now()
		respBody, err := retry.Do(ctx, q.client.executor, func(ctx context.Context) ([]byte, error) {
			return q.client.transport.Do(ctx, "POST", path, req)
		})
		q.client.obs.observe("database.query", start, err)
		if err != nil {
			return paginate.Page[*Page]{}, fmt.Errorf("query database %q: %w", q.databaseID, err)
		}

		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return paginate.Page[*Page]{}, fmt.Errorf("decode query page: %w", err)
		}

		items := make([]*Page, 0, len(env.Results))
		for _, raw := range env.Results {
			p, err := page.FromJSON(raw)
			if err != nil {
				return paginate.Page[*Page]{}, fmt.Errorf("query database %q: %w", q.databaseID, err)
			}
			wrapped := newPage(q.client, p, raw)
			q.client.storePage(ctx, wrapped)
			items = append(items, wrapped)
		}
		fetched += len(items)

		next := ""
		if env.NextCursor != nil {
			next = *env.NextCursor
		}
		return paginate.Page[*Page]{
			Items:      items,
			NextCursor: next,
			HasMore:    env.HasMore,
		}, nil
	}

	return &Iter{inner: paginate.New(fetch, limit)}, nil
}

// Collect materializes the whole result set. Memory cost is proportional to
// the result size; prefer Iter for unbounded queries.
func (q *Query) Collect(ctx context.Context) ([]*Page, error) {
	it, err := q.Iter(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Page
	for it.Next(ctx) {
		out = append(out, it.Page())
	}
	if err := it.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// First returns the first matching page, or nil when nothing matches. At
// most one page fetch is issued.
func (q *Query) First(ctx context.Context) (*Page, error) {
	it, err := q.Iter(ctx)
	if err != nil {
		return nil, err
	}
	if it.Next(ctx) {
		return it.Page(), nil
	}
	return nil, it.Err()
}

// Count consumes the whole result set and returns the tally.
func (q *Query) Count(ctx context.Context) (int, error) {
	it, err := q.Iter(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for it.Next(ctx) {
		n++
	}
	if err := it.Err(); err != nil {
		return n, err
	}
	return n, nil
}

// Exists reports whether at least one page matches.
func (q *Query) Exists(ctx context.Context) (bool, error) {
	p, err := q.First(ctx)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// Iter is the lazy sequence of pages produced by one query execution.
type Iter struct {
	inner *paginate.Iterator[*Page]
}

// Next advances to the next page object, fetching the next page of results
// only when the current one is exhausted.
func (it *Iter) Next(ctx context.Context) bool {
	return it.inner.Next(ctx)
}

// Page returns the page Next advanced to.
func (it *Iter) Page() *Page {
	return it.inner.Item()
}

// Err returns the terminal error, if any. Results yielded before a failing
// page remain valid.
func (it *Iter) Err() error {
	return it.inner.Err()
}
