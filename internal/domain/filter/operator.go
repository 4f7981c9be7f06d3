// Package filter translates typed (property, operator, value) expressions
// into the nested boolean filter grammar the remote API expects.
package filter

import "strings"

// Operator is a comparison operator in a filter expression.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpContains   Operator = "contains"
	OpNotContain Operator = "not_contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpIsNull     Operator = "is_null"
	OpIsNotNull  Operator = "is_not_null"
)

var knownOperators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpContains: {}, OpNotContain: {}, OpStartsWith: {}, OpEndsWith: {},
	OpBefore: {}, OpAfter: {}, OpIsNull: {}, OpIsNotNull: {},
}

// Valid reports whether the operator is one of the recognized operators.
func (o Operator) Valid() bool {
	_, ok := knownOperators[o]
	return ok
}

const suffixSeparator = "__"

// ParseField splits a filter field of the form "property__op" into the
// property name and operator. A missing suffix means equality. An unknown
// suffix is treated as part of the property name, so properties containing
// double underscores still resolve.
func ParseField(field string) (property string, op Operator) {
	idx := strings.LastIndex(field, suffixSeparator)
	if idx <= 0 {
		return field, OpEq
	}
	candidate := Operator(field[idx+len(suffixSeparator):])
	if !candidate.Valid() {
		return field, OpEq
	}
	return field[:idx], candidate
}
