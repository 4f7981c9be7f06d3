// Package paginate drives cursor-based pagination as a lazy, forward-only
// sequence. The next page is never requested before the current page's
// cursor is known, and no page is fetched ahead of consumption, so stopping
// early costs nothing.
package paginate

import "context"

// Page is one fetched page of raw items plus its continuation state.
type Page[T any] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// FetchFunc fetches one page for the given cursor. The cursor is empty on
// the first fetch.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

type state int

const (
	stateFetching state = iota
	stateYielding
	stateExhausted
)

// Iterator yields items across pages. Use Next/Item/Err in the usual
// database-rows style; a false Next with a nil Err means the sequence is
// exhausted.
type Iterator[T any] struct {
	fetch  FetchFunc[T]
	state  state
	cursor string
	items  []T
	pos    int
	limit  int // 0 = unbounded
	n      int // items yielded so far
	err    error
}

// New creates an iterator over fetch. limit caps the number of yielded
// items; 0 means unbounded.
func New[T any](fetch FetchFunc[T], limit int) *Iterator[T] {
	return &Iterator[T]{fetch: fetch, limit: limit}
}

// Next advances to the next item, fetching a page when the current one is
// exhausted. It returns false once the sequence ends or a fetch fails.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.err != nil || it.state == stateExhausted {
		return false
	}
	if it.limit > 0 && it.n >= it.limit {
		it.state = stateExhausted
		return false
	}

	for {
		if it.state == stateYielding {
			if it.pos < len(it.items) {
				it.pos++
				it.n++
				return true
			}
			if it.cursor == "" {
				it.state = stateExhausted
				return false
			}
			it.state = stateFetching
		}

		page, err := it.fetch(ctx, it.cursor)
		if err != nil {
			it.err = err
			it.state = stateExhausted
			return false
		}
		it.items = page.Items
		it.pos = 0
		if page.HasMore {
			it.cursor = page.NextCursor
		} else {
			it.cursor = ""
		}
		it.state = stateYielding
	}
}

// Item returns the item Next advanced to.
func (it *Iterator[T]) Item() T {
	return it.items[it.pos-1]
}

// Err returns the terminal error, if any. Items yielded before the failing
// page remain valid.
func (it *Iterator[T]) Err() error {
	return it.err
}
