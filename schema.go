package quill

import (
	"fmt"

	"github.com/quillhq/quill/internal/domain/filter"
	"github.com/quillhq/quill/internal/domain/schema"
)

// PropertyType is the declared type tag of a collection property.
type PropertyType string

// Supported property types.
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

// Schema is the property-name-to-type mapping of one database, used to
// resolve filter expressions into the correct wire predicates. Immutable
// once constructed; property lookups are case-insensitive.
type Schema struct {
	s  schema.Schema
	tr filter.Translator
}

// NewSchema builds a schema from externally supplied property types, for
// callers that load collection metadata themselves. Most callers use
// DatabaseService.Schema instead.
func NewSchema(props map[string]PropertyType) (Schema, error) {
	internal := make(map[string]schema.PropertyType, len(props))
	for name, typ := range props {
		internal[name] = schema.PropertyType(typ)
	}
	s, err := schema.New(internal)
	if err != nil {
		return Schema{}, fmt.Errorf("quill: %w", err)
	}
	return newSchema(s), nil
}

// newSchema wraps an internal schema, building the translator's dispatch
// table once.
func newSchema(s schema.Schema) Schema {
	return Schema{s: s, tr: filter.NewTranslator(s)}
}

// Len returns the number of declared properties.
func (s Schema) Len() int { return s.s.Len() }

// PropertyTypeOf resolves a property's declared type, ignoring case.
func (s Schema) PropertyTypeOf(name string) (PropertyType, bool) {
	p, ok := s.s.Lookup(name)
	if !ok {
		return "", false
	}
	return PropertyType(p.Type()), true
}
