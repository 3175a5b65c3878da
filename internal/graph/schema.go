package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Type is the primitive type tag of an attribute
type Type uint8

const (
	TypeString Type = iota + 1
	TypeInteger
	TypeFloat
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Field declares one attribute. Nil values are only accepted when Nullable is set.
type Field struct {
	Type     Type
	Nullable bool
}

// Schema maps attribute names to their declaration
type Schema map[string]Field

// Attributes is the attribute record of a node or an edge
type Attributes map[string]any

// ErrSchemaViolation is matched by every validation failure of the engine
var ErrSchemaViolation = errors.New("schema violation")

// SchemaError describes which attribute failed validation and why
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrSchemaViolation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}

// Names returns the declared attribute names in sorted order
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate checks attrs against the schema and returns a normalised copy
func (s Schema) validate(attrs Attributes) (Attributes, error) {
	for name := range attrs {
		if _, ok := s[name]; !ok {
			return nil, &SchemaError{Field: name, Reason: "attribute is not declared"}
		}
	}

	out := make(Attributes, len(s))
	for _, name := range s.Names() {
		field := s[name]
		value, ok := attrs[name]
		if !ok {
			return nil, &SchemaError{Field: name, Reason: "attribute is missing"}
		}

		normalised, err := field.normalise(value)
		if err != nil {
			return nil, &SchemaError{Field: name, Reason: err.Error()}
		}
		out[name] = normalised
	}

	return out, nil
}

func (f Field) normalise(value any) (any, error) {
	if value == nil {
		if f.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("nil value for non-nullable %s", f.Type)
	}

	switch f.Type {
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case TypeInteger:
		if i, ok := toInt64(value); ok {
			return i, nil
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}
		if i, ok := toInt64(value); ok {
			return float64(i), nil
		}
	default:
		return nil, fmt.Errorf("unknown %s", f.Type)
	}

	return nil, fmt.Errorf("expected %s, got %T", f.Type, value)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uintptr:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}
