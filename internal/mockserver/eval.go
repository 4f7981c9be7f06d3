package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotFound = errors.New("not found")

// filterNode is a parsed wire filter: either a combinator over
// children or a single property condition.
type filterNode struct {
	and      []*filterNode
	or       []*filterNode
	property string
	typeKey  string
	preds    map[string]json.RawMessage
}

// parseFilter decodes the nested boolean filter grammar.
func parseFilter(raw json.RawMessage) (*filterNode, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	if children, ok := obj["and"]; ok {
		nodes, err := parseChildren(children)
		if err != nil {
			return nil, err
		}
		return &filterNode{and: nodes}, nil
	}
	if children, ok := obj["or"]; ok {
		nodes, err := parseChildren(children)
		if err != nil {
			return nil, err
		}
		return &filterNode{or: nodes}, nil
	}

	n := &filterNode{}
	for key, val := range obj {
		if key == "property" {
			if err := json.Unmarshal(val, &n.property); err != nil {
				return nil, fmt.Errorf("property key: %w", err)
			}
			continue
		}
		n.typeKey = key
		if err := json.Unmarshal(val, &n.preds); err != nil {
			return nil, fmt.Errorf("predicate object for %q: %w", key, err)
		}
	}
	if n.property == "" || n.typeKey == "" {
		return nil, errors.New("condition needs a property and a type key")
	}
	return n, nil
}

func parseChildren(raw json.RawMessage) ([]*filterNode, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	nodes := make([]*filterNode, 0, len(items))
	for _, item := range items {
		n, err := parseFilter(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (n *filterNode) matches(props map[string]json.RawMessage) bool {
	switch {
	case n.and != nil:
		for _, c := range n.and {
			if !c.matches(props) {
				return false
			}
		}
		return true
	case n.or != nil:
		for _, c := range n.or {
			if c.matches(props) {
				return true
			}
		}
		return false
	}

	val := extractValue(lookupProperty(props, n.property))
	for pred, arg := range n.preds {
		if !evalPredicate(pred, arg, val) {
			return false
		}
	}
	return true
}

// lookupProperty finds a property value case-insensitively, matching
// the server's lenient name handling.
func lookupProperty(props map[string]json.RawMessage, name string) json.RawMessage {
	if v, ok := props[name]; ok {
		return v
	}
	for k, v := range props {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// propValue is the comparable form of a stored property value.
type propValue struct {
	kind   valueKind
	str    string
	num    float64
	boolV  bool
	strSet []string // multi_select names, relation/people IDs, file names
}

type valueKind int

const (
	kindEmpty valueKind = iota
	kindString
	kindNumber
	kindBool
	kindSet
)

// wireProperty mirrors the union of property value payload shapes.
type wireProperty struct {
	Type        string         `json:"type"`
	Title       []textFragment `json:"title"`
	RichText    []textFragment `json:"rich_text"`
	URL         *string        `json:"url"`
	Email       *string        `json:"email"`
	PhoneNumber *string        `json:"phone_number"`
	Number      *float64       `json:"number"`
	Checkbox    *bool          `json:"checkbox"`
	Select      *namedOption   `json:"select"`
	Status      *namedOption   `json:"status"`
	MultiSelect []namedOption  `json:"multi_select"`
	Date        *dateValue     `json:"date"`
	People      []idRef        `json:"people"`
	Relation    []idRef        `json:"relation"`
	Files       []fileRef      `json:"files"`
}

type textFragment struct {
	PlainText string `json:"plain_text"`
}

type namedOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type idRef struct {
	ID string `json:"id"`
}

type fileRef struct {
	Name string `json:"name"`
}

// extractValue flattens a raw wire property into a comparable value.
func extractValue(raw json.RawMessage) propValue {
	if len(raw) == 0 {
		return propValue{}
	}
	var p wireProperty
	if err := json.Unmarshal(raw, &p); err != nil {
		return propValue{}
	}

	switch p.Type {
	case "title":
		return stringValue(joinFragments(p.Title))
	case "rich_text":
		return stringValue(joinFragments(p.RichText))
	case "url":
		return stringPtrValue(p.URL)
	case "email":
		return stringPtrValue(p.Email)
	case "phone_number":
		return stringPtrValue(p.PhoneNumber)
	case "number":
		if p.Number == nil {
			return propValue{}
		}
		return propValue{kind: kindNumber, num: *p.Number}
	case "checkbox":
		if p.Checkbox == nil {
			return propValue{}
		}
		return propValue{kind: kindBool, boolV: *p.Checkbox}
	case "select":
		if p.Select == nil {
			return propValue{}
		}
		return stringValue(p.Select.Name)
	case "status":
		if p.Status == nil {
			return propValue{}
		}
		return stringValue(p.Status.Name)
	case "multi_select":
		names := make([]string, len(p.MultiSelect))
		for i, o := range p.MultiSelect {
			names[i] = o.Name
		}
		return setValue(names)
	case "date":
		if p.Date == nil {
			return propValue{}
		}
		return stringValue(p.Date.Start)
	case "people":
		return setValue(refIDs(p.People))
	case "relation":
		return setValue(refIDs(p.Relation))
	case "files":
		names := make([]string, len(p.Files))
		for i, f := range p.Files {
			names[i] = f.Name
		}
		return setValue(names)
	}
	return propValue{}
}

func joinFragments(frags []textFragment) string {
	if len(frags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.PlainText)
	}
	return b.String()
}

func refIDs(refs []idRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

func stringValue(s string) propValue {
	if s == "" {
		return propValue{}
	}
	return propValue{kind: kindString, str: s}
}

func stringPtrValue(s *string) propValue {
	if s == nil {
		return propValue{}
	}
	return stringValue(*s)
}

func setValue(items []string) propValue {
	if len(items) == 0 {
		return propValue{}
	}
	return propValue{kind: kindSet, strSet: items}
}

// evalPredicate applies one wire predicate to a flattened value.
func evalPredicate(pred string, arg json.RawMessage, val propValue) bool {
	switch pred {
	case "is_empty":
		return val.kind == kindEmpty
	case "is_not_empty":
		return val.kind != kindEmpty
	}

	switch val.kind {
	case kindEmpty:
		// Only does_not_equal and does_not_contain hold for absent values.
		return pred == "does_not_equal" || pred == "does_not_contain"
	case kindNumber:
		var want float64
		if json.Unmarshal(arg, &want) != nil {
			return false
		}
		return compareNumber(pred, val.num, want)
	case kindBool:
		var want bool
		if json.Unmarshal(arg, &want) != nil {
			return false
		}
		switch pred {
		case "equals":
			return val.boolV == want
		case "does_not_equal":
			return val.boolV != want
		}
		return false
	case kindSet:
		var want string
		if json.Unmarshal(arg, &want) != nil {
			return false
		}
		has := false
		for _, item := range val.strSet {
			if item == want {
				has = true
				break
			}
		}
		switch pred {
		case "contains", "equals":
			return has
		case "does_not_contain", "does_not_equal":
			return !has
		}
		return false
	default:
		var want string
		if json.Unmarshal(arg, &want) != nil {
			return false
		}
		return compareString(pred, val.str, want)
	}
}

func compareNumber(pred string, got, want float64) bool {
	switch pred {
	case "equals":
		return got == want
	case "does_not_equal":
		return got != want
	case "greater_than":
		return got > want
	case "greater_than_or_equal_to":
		return got >= want
	case "less_than":
		return got < want
	case "less_than_or_equal_to":
		return got <= want
	}
	return false
}

func compareString(pred string, got, want string) bool {
	switch pred {
	case "equals":
		return got == want
	case "does_not_equal":
		return got != want
	case "contains":
		return strings.Contains(got, want)
	case "does_not_contain":
		return !strings.Contains(got, want)
	case "starts_with":
		return strings.HasPrefix(got, want)
	case "ends_with":
		return strings.HasSuffix(got, want)
	// Dates are ISO 8601 strings, so lexicographic order is chronological.
	case "on_or_before":
		return got <= want
	case "on_or_after":
		return got >= want
	}
	return false
}

// compareValues orders two flattened values for sorting. Empty values
// sort first; mismatched kinds compare by kind.
func compareValues(a, b propValue) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case kindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case kindBool:
		switch {
		case !a.boolV && b.boolV:
			return -1
		case a.boolV && !b.boolV:
			return 1
		}
		return 0
	case kindSet:
		return strings.Compare(strings.Join(a.strSet, ","), strings.Join(b.strSet, ","))
	default:
		return strings.Compare(a.str, b.str)
	}
}
