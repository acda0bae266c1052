package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
)

// Descriptor declares the shape a decoded document must satisfy: field names,
// types, required/optional markers, defaults, and allowed values. It is a
// small subset of JSON Schema, sufficient for validating one document level
// and for rendering format instructions into a prompt.
type Descriptor struct {
	// Type specifies the data type (e.g. "object", "array", "string", "integer").
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	// Required lists field names that must be present in the document.
	Required []string `json:"required,omitempty"`
	// Properties of the object, each with its own descriptor.
	Properties map[string]*Descriptor `json:"properties,omitempty"`
	// Items defines the descriptor of array elements.
	Items *Descriptor `json:"items,omitempty"`
	// AdditionalProperties controls whether undeclared fields are allowed.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default is the value an absent optional field receives.
	Default any `json:"default,omitempty"`
	// Enum contains the list of allowed values for the field.
	Enum []any `json:"enum,omitempty"`
}

// For derives the descriptor for T from its struct tags. Field names follow
// yaml.v3 conventions: the yaml tag when present, the json tag as fallback,
// and the lowercased Go field name otherwise.
//
// Supported jsonschema struct tag items:
//   - "required" marks the field required regardless of its Go type
//   - "description=..." sets the field description
//   - "enum=a,enum=b" restricts the field to the listed values
//   - "default=x" supplies the value applied when the field is absent
//
// Non-pointer fields without an omitempty marker are required by default.
func For[T any]() *Descriptor {
	return describe(reflect.TypeFor[T](), map[reflect.Type]bool{})
}

// JSON renders the descriptor as indented JSON, suitable for embedding into
// a prompt as a format instruction.
func (d *Descriptor) JSON() string {
	encoded, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// NameOf returns the document field name for a struct field, or skip=true
// when the field is excluded from decoding.
func NameOf(field reflect.StructField) (name string, skip bool) {
	name, _, skip = parseName(field)
	return name, skip
}

func describe(t reflect.Type, visited map[reflect.Type]bool) *Descriptor {
	switch t.Kind() {
	case reflect.Ptr:
		return describe(t.Elem(), visited)
	case reflect.String:
		return &Descriptor{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Descriptor{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Descriptor{Type: "number"}
	case reflect.Bool:
		return &Descriptor{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &Descriptor{Type: "array", Items: describe(t.Elem(), visited)}
	case reflect.Map:
		return &Descriptor{Type: "object", AdditionalProperties: true}
	case reflect.Struct:
		return describeStruct(t, visited)
	case reflect.Interface:
		// Arbitrary payload; no constraint to declare.
		return &Descriptor{}
	default:
		return &Descriptor{Type: "string"}
	}
}

func describeStruct(t reflect.Type, visited map[reflect.Type]bool) *Descriptor {
	if visited[t] {
		// Recursive type: cut the cycle with an unconstrained object node.
		return &Descriptor{Type: "object"}
	}
	visited[t] = true
	defer delete(visited, t)

	d := &Descriptor{Type: "object", Properties: map[string]*Descriptor{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := parseName(field)
		if skip {
			continue
		}

		property := describe(field.Type, visited)
		requiredByTag, err := applyTag(field.Type, field.Tag, property)
		if err != nil {
			// A malformed tag disables its extras but never aborts generation.
			slog.Error("invalid jsonschema tag", "field", name, "error", err)
		}
		d.Properties[name] = property

		if (field.Type.Kind() != reflect.Ptr && !omitEmpty) || requiredByTag {
			d.Required = append(d.Required, name)
		}
	}
	return d
}

// parseName resolves the document field name for a struct field the way
// yaml.v3 resolves it during decoding.
func parseName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("yaml")
	if tag == "" {
		tag = field.Tag.Get("json")
	}
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return strings.ToLower(field.Name), false, false
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = strings.ToLower(field.Name)
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// applyTag parses the jsonschema struct tag and applies its settings to the
// descriptor. Reports whether the field was explicitly marked required.
func applyTag(fieldType reflect.Type, tag reflect.StructTag, d *Descriptor) (bool, error) {
	raw := tag.Get("jsonschema")
	if raw == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(item, "=")
		switch {
		case !found && key == "required":
			required = true
		case key == "description":
			d.Description = value
		case key == "enum":
			converted, err := convertScalar(fieldType, value)
			if err != nil {
				return required, fmt.Errorf("enum value %q: %w", value, err)
			}
			d.Enum = append(d.Enum, converted)
		case key == "default":
			converted, err := convertScalar(fieldType, value)
			if err != nil {
				return required, fmt.Errorf("default value %q: %w", value, err)
			}
			d.Default = converted
		}
	}
	return required, nil
}

// convertScalar coerces a tag literal to the field's scalar kind.
func convertScalar(t reflect.Type, value string) (any, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse as int64: %w", err)
		}
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse as uint64: %w", err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse as float64: %w", err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse as bool: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scalar kind %s", t.Kind())
	}
}
