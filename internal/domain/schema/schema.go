// Package schema holds the property-name-to-type mapping of one remote
// collection, used to resolve the correct wire predicate for each filter.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PropertyType is the declared type tag of a collection property.
type PropertyType string

const (
	TypeTitle       PropertyType = "title"
	TypeRichText    PropertyType = "rich_text"
	TypeURL         PropertyType = "url"
	TypeEmail       PropertyType = "email"
	TypePhoneNumber PropertyType = "phone_number"
	TypeNumber      PropertyType = "number"
	TypeCheckbox    PropertyType = "checkbox"
	TypeSelect      PropertyType = "select"
	TypeMultiSelect PropertyType = "multi_select"
	TypeStatus      PropertyType = "status"
	TypeDate        PropertyType = "date"
	TypePeople      PropertyType = "people"
	TypeFiles       PropertyType = "files"
	TypeRelation    PropertyType = "relation"
)

var knownTypes = map[PropertyType]struct{}{
	TypeTitle: {}, TypeRichText: {}, TypeURL: {}, TypeEmail: {},
	TypePhoneNumber: {}, TypeNumber: {}, TypeCheckbox: {}, TypeSelect: {},
	TypeMultiSelect: {}, TypeStatus: {}, TypeDate: {}, TypePeople: {},
	TypeFiles: {}, TypeRelation: {},
}

// Valid reports whether the type tag is one of the supported property types.
func (t PropertyType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Property is one declared collection property.
type Property struct {
	name string
	typ  PropertyType
}

// Name returns the property name exactly as declared by the collection.
func (p Property) Name() string { return p.name }

// Type returns the declared type tag.
func (p Property) Type() PropertyType { return p.typ }

// Schema is an immutable mapping from property name to declared type.
// Lookups are case-insensitive; the declared spelling is preserved for
// serialization.
type Schema struct {
	byLower map[string]Property
}

// New validates and creates a Schema from declared property types.
func New(props map[string]PropertyType) (Schema, error) {
	byLower := make(map[string]Property, len(props))
	for name, typ := range props {
		if name == "" {
			return Schema{}, fmt.Errorf("property name is required")
		}
		if !typ.Valid() {
			return Schema{}, fmt.Errorf("property %q: unknown type tag %q", name, typ)
		}
		lower := strings.ToLower(name)
		if prev, dup := byLower[lower]; dup {
			return Schema{}, fmt.Errorf("properties %q and %q collide case-insensitively", prev.name, name)
		}
		byLower[lower] = Property{name: name, typ: typ}
	}
	return Schema{byLower: byLower}, nil
}

// Lookup resolves a property by name, ignoring case.
func (s Schema) Lookup(name string) (Property, bool) {
	p, ok := s.byLower[strings.ToLower(name)]
	return p, ok
}

// Len returns the number of declared properties.
func (s Schema) Len() int { return len(s.byLower) }

// Properties returns all declared properties in unspecified order.
func (s Schema) Properties() []Property {
	out := make([]Property, 0, len(s.byLower))
	for _, p := range s.byLower {
		out = append(out, p)
	}
	return out
}

// wireProperty mirrors the per-property object in collection metadata.
type wireProperty struct {
	Type PropertyType `json:"type"`
}

// ParseJSON builds a Schema from the `properties` object of collection
// metadata as returned by the remote API.
func ParseJSON(data []byte) (Schema, error) {
	var raw map[string]wireProperty
	if err := json.Unmarshal(data, &raw); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}
	props := make(map[string]PropertyType, len(raw))
	for name, wp := range raw {
		props[name] = wp.Type
	}
	return New(props)
}
