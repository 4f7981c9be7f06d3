// Package page parses raw result items into page envelopes. Only the
// envelope fields are interpreted here; property payloads stay opaque for
// the caller's own entity mapping.
package page

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Parent is a reference to the object a page belongs to.
type Parent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Page is the decoded envelope of one result item.
type Page struct {
	ID             string                     `json:"id"`
	CreatedTime    time.Time                  `json:"created_time"`
	LastEditedTime time.Time                  `json:"last_edited_time"`
	Archived       bool                       `json:"archived"`
	URL            string                     `json:"url"`
	Parent         Parent                     `json:"parent"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

// FromJSON is the entity factory for raw result items.
func FromJSON(raw json.RawMessage) (Page, error) {
	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	if p.ID == "" {
		return Page{}, fmt.Errorf("decode page: missing id")
	}
	return p, nil
}

// NormalizeID canonicalizes page and collection identifiers so cache lookups
// treat dashed and compact UUID spellings as the same key. Identifiers that
// are not UUIDs pass through lowercased.
func NormalizeID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return strings.ToLower(id)
}

// relationProperty mirrors the wire shape of a relation property value.
type relationProperty struct {
	Relation []struct {
		ID string `json:"id"`
	} `json:"relation"`
}

// RelationIDs extracts the target page IDs of a relation property. A missing
// property or a property of another type yields an empty slice.
func (p Page) RelationIDs(property string) []string {
	raw, ok := p.Properties[property]
	if !ok {
		return nil
	}
	var rel relationProperty
	if err := json.Unmarshal(raw, &rel); err != nil {
		return nil
	}
	ids := make([]string, 0, len(rel.Relation))
	for _, r := range rel.Relation {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
