package schema

import (
	"testing"
)

func TestNew_Valid(t *testing.T) {
	s, err := New(map[string]PropertyType{
		"Name":   TypeTitle,
		"Status": TypeSelect,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 properties, got %d", s.Len())
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(map[string]PropertyType{"Name": PropertyType("formula")})
	if err == nil {
		t.Fatal("expected error for unknown type tag")
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New(map[string]PropertyType{"": TypeTitle})
	if err == nil {
		t.Fatal("expected error for empty property name")
	}
}

func TestNew_CaseCollision(t *testing.T) {
	_, err := New(map[string]PropertyType{
		"Status": TypeSelect,
		"status": TypeRichText,
	})
	if err == nil {
		t.Fatal("expected error for case-insensitive collision")
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	s, err := New(map[string]PropertyType{"Status": TypeSelect})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"Status", "status", "STATUS", "sTaTuS"} {
		p, ok := s.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) missed", name)
		}
		if p.Name() != "Status" {
			t.Errorf("Lookup(%q) returned spelling %q, want declared %q", name, p.Name(), "Status")
		}
		if p.Type() != TypeSelect {
			t.Errorf("Lookup(%q) returned type %q", name, p.Type())
		}
	}

	if _, ok := s.Lookup("Missing"); ok {
		t.Error("expected miss for undeclared property")
	}
}

func TestParseJSON(t *testing.T) {
	raw := []byte(`{
		"Name":     {"type": "title"},
		"Priority": {"type": "number"},
		"Due":      {"type": "date"}
	}`)

	s, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 properties, got %d", s.Len())
	}
	p, ok := s.Lookup("priority")
	if !ok || p.Type() != TypeNumber {
		t.Errorf("expected Priority to be a number property, got %v ok=%v", p, ok)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed metadata")
	}
	if _, err := ParseJSON([]byte(`{"X": {"type": "unknown"}}`)); err == nil {
		t.Error("expected error for unknown property type")
	}
}
