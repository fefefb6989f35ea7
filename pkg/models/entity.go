package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AttributeKind identifies the type of an attribute value
type AttributeKind string

const (
	AttributeKindNumber AttributeKind = "number" // float64, JSON ints included
	AttributeKindString AttributeKind = "string" // free text or categorical
	AttributeKindList   AttributeKind = "list"   // list of strings
)

// AttributeValue is a tagged variant over the closed attribute kind set.
// Exactly one of the value fields is meaningful, selected by Kind.
type AttributeValue struct {
	Kind   AttributeKind
	Number float64
	Text   string
	List   []string
}

// NumberValue builds a numeric attribute value
func NumberValue(n float64) AttributeValue {
	return AttributeValue{Kind: AttributeKindNumber, Number: n}
}

// StringValue builds a string attribute value
func StringValue(s string) AttributeValue {
	return AttributeValue{Kind: AttributeKindString, Text: s}
}

// ListValue builds a list attribute value
func ListValue(items ...string) AttributeValue {
	return AttributeValue{Kind: AttributeKindList, List: items}
}

// UnmarshalJSON maps raw JSON values onto attribute kinds. Booleans, nulls,
// objects and mixed-type arrays are rejected.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode attribute value: %w", err)
	}

	switch value := raw.(type) {
	case json.Number:
		n, err := value.Float64()
		if err != nil {
			return fmt.Errorf("invalid numeric attribute %q: %w", value.String(), err)
		}
		*v = NumberValue(n)
	case string:
		*v = StringValue(value)
	case []any:
		items := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("list attributes must contain only strings, got %T", item)
			}
			items = append(items, s)
		}
		*v = ListValue(items...)
	default:
		return fmt.Errorf("unsupported attribute value type %T", raw)
	}
	return nil
}

// MarshalJSON emits the raw JSON form for the value's kind
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AttributeKindNumber:
		return json.Marshal(v.Number)
	case AttributeKindString:
		return json.Marshal(v.Text)
	case AttributeKindList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	default:
		return nil, fmt.Errorf("unsupported attribute kind %q", v.Kind)
	}
}

// UnmarshalYAML maps YAML scalars and sequences onto attribute kinds, so
// scenario files can declare attributes the same way API payloads do.
func (v *AttributeValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!int", "!!float":
			var n float64
			if err := node.Decode(&n); err != nil {
				return fmt.Errorf("invalid numeric attribute %q: %w", node.Value, err)
			}
			*v = NumberValue(n)
		case "!!str":
			*v = StringValue(node.Value)
		default:
			return fmt.Errorf("unsupported attribute scalar %s at line %d", node.Tag, node.Line)
		}
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("list attributes must contain only strings: %w", err)
		}
		*v = ListValue(items...)
	default:
		return fmt.Errorf("unsupported attribute value at line %d", node.Line)
	}
	return nil
}

// Entity is one member of a matching population. Preferences are optional
// and only consulted by stable-matching; ids they mention must belong to the
// opposite set.
type Entity struct {
	ID          string                    `json:"id" yaml:"id" validate:"required"`
	Type        string                    `json:"entity_type,omitempty" yaml:"entity_type"`
	Attributes  map[string]AttributeValue `json:"attributes,omitempty" yaml:"attributes"`
	Preferences []string                  `json:"preferences,omitempty" yaml:"preferences"`
}

// Attribute returns the named attribute and whether it is present
func (e *Entity) Attribute(name string) (AttributeValue, bool) {
	value, ok := e.Attributes[name]
	return value, ok
}
