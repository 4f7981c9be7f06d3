package filter

import (
	"fmt"
	"strings"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/domain/schema"
)

// typeTranslator resolves operators for one property type. Each variant owns
// its own table of supported operators and wire predicates.
type typeTranslator interface {
	// wireKey is the JSON key the condition object is nested under.
	wireKey() string
	// translate resolves the wire predicate and value for an operator.
	translate(op Operator, value any) (predicate string, wireValue any, err error)
}

// predicateTable maps supported operators to wire predicate names. Null
// checks are handled uniformly before the table is consulted.
type predicateTable map[Operator]string

func (t predicateTable) resolve(op Operator) (string, bool) {
	p, ok := t[op]
	return p, ok
}

// nullPredicate resolves is_null / is_not_null, which every property type
// supports with a boolean wire value.
func nullPredicate(op Operator) (string, bool) {
	switch op {
	case OpIsNull:
		return "is_empty", true
	case OpIsNotNull:
		return "is_not_empty", true
	default:
		return "", false
	}
}

// tableTranslator is the shared implementation for types whose operators
// need no value coercion.
type tableTranslator struct {
	key   string
	table predicateTable
}

func (t tableTranslator) wireKey() string { return t.key }

func (t tableTranslator) translate(op Operator, value any) (string, any, error) {
	if pred, ok := nullPredicate(op); ok {
		return pred, true, nil
	}
	pred, ok := t.table.resolve(op)
	if !ok {
		return "", nil, unsupported(op, t.key)
	}
	return pred, value, nil
}

func unsupported(op Operator, typeTag string) error {
	return fmt.Errorf("operator %q is not valid for %s properties: %w",
		op, typeTag, domain.ErrUnsupportedOperator)
}

var equalityTable = predicateTable{
	OpEq: "equals",
	OpNe: "does_not_equal",
}

var textTable = predicateTable{
	OpEq:         "equals",
	OpNe:         "does_not_equal",
	OpContains:   "contains",
	OpNotContain: "does_not_contain",
	OpStartsWith: "starts_with",
	OpEndsWith:   "ends_with",
}

var multiValueTable = predicateTable{
	OpEq:         "equals",
	OpNe:         "does_not_equal",
	OpContains:   "contains",
	OpNotContain: "does_not_contain",
}

// numberTranslator adds ordering comparisons and numeric value validation.
type numberTranslator struct{}

var numberTable = predicateTable{
	OpEq:  "equals",
	OpNe:  "does_not_equal",
	OpGt:  "greater_than",
	OpGte: "greater_than_or_equal_to",
	OpLt:  "less_than",
	OpLte: "less_than_or_equal_to",
}

func (numberTranslator) wireKey() string { return "number" }

func (numberTranslator) translate(op Operator, value any) (string, any, error) {
	if pred, ok := nullPredicate(op); ok {
		return pred, true, nil
	}
	pred, ok := numberTable.resolve(op)
	if !ok {
		return "", nil, unsupported(op, "number")
	}
	num, err := toNumber(value)
	if err != nil {
		return "", nil, err
	}
	return pred, num, nil
}

func toNumber(value any) (any, error) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	default:
		return nil, fmt.Errorf("number filter requires a numeric value, got %T: %w",
			value, domain.ErrUnsupportedOperator)
	}
}

// checkboxTranslator validates boolean values.
type checkboxTranslator struct{}

func (checkboxTranslator) wireKey() string { return "checkbox" }

func (checkboxTranslator) translate(op Operator, value any) (string, any, error) {
	if pred, ok := nullPredicate(op); ok {
		return pred, true, nil
	}
	pred, ok := equalityTable.resolve(op)
	if !ok {
		return "", nil, unsupported(op, "checkbox")
	}
	b, ok := value.(bool)
	if !ok {
		return "", nil, fmt.Errorf("checkbox filter requires a bool value, got %T: %w",
			value, domain.ErrUnsupportedOperator)
	}
	return pred, b, nil
}

// dateTranslator keeps equality and range predicates distinct: eq resolves
// to "equals" (exact day), before/after resolve to the inclusive range
// predicates on_or_before/on_or_after.
type dateTranslator struct{}

var dateTable = predicateTable{
	OpEq:     "equals",
	OpNe:     "does_not_equal",
	OpBefore: "on_or_before",
	OpAfter:  "on_or_after",
}

func (dateTranslator) wireKey() string { return "date" }

func (dateTranslator) translate(op Operator, value any) (string, any, error) {
	if pred, ok := nullPredicate(op); ok {
		return pred, true, nil
	}
	pred, ok := dateTable.resolve(op)
	if !ok {
		return "", nil, unsupported(op, "date")
	}
	return pred, value, nil
}

// translatorFor returns the variant for a declared property type. The set of
// variants is closed; Schema validation guarantees the tag is known.
func translatorFor(typ schema.PropertyType) typeTranslator {
	switch typ {
	case schema.TypeNumber:
		return numberTranslator{}
	case schema.TypeCheckbox:
		return checkboxTranslator{}
	case schema.TypeDate:
		return dateTranslator{}
	case schema.TypeSelect, schema.TypeStatus:
		return tableTranslator{key: string(typ), table: equalityTable}
	case schema.TypeMultiSelect, schema.TypePeople, schema.TypeRelation:
		return tableTranslator{key: string(typ), table: multiValueTable}
	case schema.TypeFiles:
		return tableTranslator{key: "files", table: equalityTable}
	default:
		// Text family: title, rich_text, url, email, phone_number.
		return tableTranslator{key: string(typ), table: textTable}
	}
}

// binding pairs a declared property with its type translator.
type binding struct {
	name string
	tt   typeTranslator
}

// Translator resolves filter expressions against one collection schema.
// The property-to-variant table is built once at construction instead of
// being re-dispatched on every call.
type Translator struct {
	bindings map[string]binding
}

// NewTranslator builds the per-property dispatch table from a schema.
func NewTranslator(s schema.Schema) Translator {
	bindings := make(map[string]binding, s.Len())
	for _, p := range s.Properties() {
		bindings[strings.ToLower(p.Name())] = binding{
			name: p.Name(),
			tt:   translatorFor(p.Type()),
		}
	}
	return Translator{bindings: bindings}
}

// Translate compiles one filter expression into a wire-format node. Property
// lookup is case-insensitive; the node carries the declared spelling.
func (t Translator) Translate(property string, op Operator, value any) (Node, error) {
	b, ok := t.bindings[strings.ToLower(property)]
	if !ok {
		return Node{}, fmt.Errorf("property %q: %w", property, domain.ErrPropertyNotFound)
	}
	if !op.Valid() {
		return Node{}, fmt.Errorf("property %q: operator %q is not recognized: %w",
			property, op, domain.ErrUnsupportedOperator)
	}
	pred, wireValue, err := b.tt.translate(op, value)
	if err != nil {
		return Node{}, fmt.Errorf("property %q: %w", property, err)
	}
	return newCondition(b.name, b.tt.wireKey(), pred, wireValue), nil
}
