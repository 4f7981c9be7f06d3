package page

import (
	"encoding/json"
	"testing"
)

func TestFromJSON(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "a2b1",
		"created_time": "2026-08-01T10:00:00Z",
		"last_edited_time": "2026-08-02T10:00:00Z",
		"archived": false,
		"url": "https://quillhq.com/a2b1",
		"parent": {"type": "database_id", "database_id": "db1"},
		"properties": {"Name": {"type": "title", "title": []}}
	}`)

	p, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "a2b1" {
		t.Errorf("expected id a2b1, got %q", p.ID)
	}
	if p.Parent.DatabaseID != "db1" {
		t.Errorf("expected parent db1, got %q", p.Parent.DatabaseID)
	}
	if _, ok := p.Properties["Name"]; !ok {
		t.Error("expected Name property to survive decoding")
	}
}

func TestFromJSON_MissingID(t *testing.T) {
	if _, err := FromJSON(json.RawMessage(`{"url": "x"}`)); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	if _, err := FromJSON(json.RawMessage(`nope`)); err == nil {
		t.Error("expected error for malformed item")
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// Compact and dashed spellings of the same UUID collapse.
		{"1f9e3b2a8c4d4e5fa6b7c8d9e0f1a2b3", "1f9e3b2a-8c4d-4e5f-a6b7-c8d9e0f1a2b3"},
		{"1F9E3B2A-8C4D-4E5F-A6B7-C8D9E0F1A2B3", "1f9e3b2a-8c4d-4e5f-a6b7-c8d9e0f1a2b3"},
		{"1f9e3b2a-8c4d-4e5f-a6b7-c8d9e0f1a2b3", "1f9e3b2a-8c4d-4e5f-a6b7-c8d9e0f1a2b3"},
		// Non-UUID identifiers pass through lowercased.
		{"My-Custom-Key", "my-custom-key"},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelationIDs(t *testing.T) {
	p := Page{Properties: map[string]json.RawMessage{
		"Blocked": json.RawMessage(`{"type":"relation","relation":[{"id":"p1"},{"id":"p2"}]}`),
		"Name":    json.RawMessage(`{"type":"title","title":[]}`),
	}}

	ids := p.RelationIDs("Blocked")
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("unexpected relation ids: %v", ids)
	}

	if got := p.RelationIDs("Name"); len(got) != 0 {
		t.Errorf("non-relation property must yield no ids, got %v", got)
	}
	if got := p.RelationIDs("Missing"); got != nil {
		t.Errorf("missing property must yield nil, got %v", got)
	}
}
