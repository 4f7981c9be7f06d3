package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is a wire-format-ready filter fragment: either a single property
// condition or an AND combination of other nodes. A Node is structurally
// valid for serialization from the moment it is constructed.
type Node struct {
	property  string
	wireType  string
	predicate string
	value     any

	and []Node
}

// newCondition creates a single-property condition node.
func newCondition(property, wireType, predicate string, value any) Node {
	return Node{
		property:  property,
		wireType:  wireType,
		predicate: predicate,
		value:     value,
	}
}

// And combines nodes under the AND combinator. A single node is returned
// unwrapped, since the wire grammar allows a bare condition at top level.
func And(nodes []Node) (Node, error) {
	if len(nodes) == 0 {
		return Node{}, fmt.Errorf("and combinator requires at least one condition")
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return Node{and: nodes}, nil
}

// IsCombinator reports whether the node is an AND combination.
func (n Node) IsCombinator() bool { return len(n.and) > 0 }

// Property returns the property name of a condition node.
func (n Node) Property() string { return n.property }

// MarshalJSON serializes the node into the remote filter grammar:
// {"property": P, "<type>": {"<predicate>": V}} for conditions and
// {"and": [...]} for combinators. Conditions are built by hand so the
// property key always comes first, independent of map key ordering.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsCombinator() {
		return json.Marshal(map[string]any{"and": n.and})
	}
	if n.property == "" {
		return nil, fmt.Errorf("cannot serialize zero filter node")
	}
	prop, err := json.Marshal(n.property)
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(n.wireType)
	if err != nil {
		return nil, err
	}
	cond, err := json.Marshal(map[string]any{n.predicate: n.value})
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString(`{"property":`)
	b.Write(prop)
	b.WriteByte(',')
	b.Write(key)
	b.WriteByte(':')
	b.Write(cond)
	b.WriteByte('}')
	return b.Bytes(), nil
}
