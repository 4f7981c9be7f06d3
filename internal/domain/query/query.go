// Package query accumulates compiled filter nodes, sort specs and a result
// limit, and assembles the wire-format request body.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/domain/filter"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Sort is a (property, direction) pair. Insertion order across a Spec
// determines tie-break precedence.
type Sort struct {
	property  string
	direction Direction
}

// NewSort validates and creates a Sort.
func NewSort(property string, direction Direction) (Sort, error) {
	if property == "" {
		return Sort{}, fmt.Errorf("sort property is required")
	}
	if direction != Ascending && direction != Descending {
		return Sort{}, fmt.Errorf("direction %q: %w", direction, domain.ErrInvalidDirection)
	}
	return Sort{property: property, direction: direction}, nil
}

// Property returns the sorted property name.
func (s Sort) Property() string { return s.property }

// Direction returns the sort direction.
func (s Sort) Direction() Direction { return s.direction }

// MarshalJSON serializes the sort into {"property": ..., "direction": ...}.
func (s Sort) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"property":  s.property,
		"direction": string(s.direction),
	})
}

// Spec is the mutable accumulator behind one query builder. It is built
// incrementally and read-only once execution begins.
type Spec struct {
	filters []filter.Node
	sorts   []Sort
	limit   int
}

// AddFilter appends a compiled filter node.
func (s *Spec) AddFilter(n filter.Node) {
	s.filters = append(s.filters, n)
}

// AddSort appends a sort spec.
func (s *Spec) AddSort(srt Sort) {
	s.sorts = append(s.sorts, srt)
}

// SetLimit sets the client-side result cap.
func (s *Spec) SetLimit(n int) error {
	if n <= 0 {
		return fmt.Errorf("limit %d: %w", n, domain.ErrInvalidLimit)
	}
	s.limit = n
	return nil
}

// Limit returns the result cap, 0 meaning unbounded.
func (s *Spec) Limit() int { return s.limit }

// Body is the fixed portion of the query request body. The cursor and page
// size vary per fetch and are merged in by the paginator.
type Body struct {
	Filter *filter.Node `json:"filter,omitempty"`
	Sorts  []Sort       `json:"sorts,omitempty"`
}

// Build assembles the request body once per execution. Multiple top-level
// filter fragments are wrapped in an AND combinator.
func (s *Spec) Build() (Body, error) {
	var body Body
	if len(s.filters) > 0 {
		combined, err := filter.And(s.filters)
		if err != nil {
			return Body{}, fmt.Errorf("combine filters: %w", err)
		}
		body.Filter = &combined
	}
	if len(s.sorts) > 0 {
		body.Sorts = s.sorts
	}
	return body, nil
}
