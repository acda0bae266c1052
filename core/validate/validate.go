package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kuanpern/lg-utils/core/extract"
	"github.com/kuanpern/lg-utils/internal/schema"
)

// SchemaError reports that a selected candidate does not satisfy the schema
// declared by the target type. It is distinguishable from transport and
// programming errors via errors.As, so the orchestration layer can classify
// it as "caused by model output, worth re-invoking the model".
type SchemaError struct {
	// Missing lists required fields absent from the candidate.
	Missing []string
	// Fields carries field-level decoding diagnostics.
	Fields []string

	cause error
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required fields: %v", e.Missing))
	}
	if len(e.Fields) > 0 {
		parts = append(parts, fmt.Sprintf("field errors: %s", strings.Join(e.Fields, "; ")))
	}
	if len(parts) == 0 {
		parts = append(parts, "document does not match schema")
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return e.cause }

// As validates candidate against the schema declared by T and decodes it into
// a fully populated value. Required fields (per T's struct tags, see
// internal/schema) must all be present; optional fields absent from the
// candidate receive their declared defaults; enum-tagged fields must hold one
// of the allowed values. Every mismatch is reported as a *SchemaError.
func As[T any](candidate extract.Candidate) (T, error) {
	var out T
	descriptor := schema.For[T]()

	var missing []string
	for _, field := range descriptor.Required {
		if !candidate.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return out, &SchemaError{Missing: missing}
	}

	applyDefaults(&out, descriptor)

	if err := candidate.Decode(&out); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return out, &SchemaError{Fields: typeErr.Errors, cause: err}
		}
		return out, &SchemaError{Fields: []string{err.Error()}, cause: err}
	}

	if err := checkEnums(candidate, descriptor); err != nil {
		return out, err
	}
	return out, nil
}

// applyDefaults pre-populates declared defaults on the zero value before
// decoding. Fields present in the candidate are overwritten by the decoder,
// so only absent optional fields keep their defaults.
func applyDefaults(out any, descriptor *schema.Descriptor) {
	v := reflect.ValueOf(out).Elem()
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, skip := schema.NameOf(field)
		if skip {
			continue
		}
		property := descriptor.Properties[name]
		if property == nil || property.Default == nil {
			continue
		}

		value := reflect.ValueOf(property.Default)
		target := v.Field(i)
		if value.Type().ConvertibleTo(target.Type()) {
			target.Set(value.Convert(target.Type()))
		}
	}
}

// checkEnums verifies enum-constrained top-level fields against the values
// the candidate actually carries.
func checkEnums(candidate extract.Candidate, descriptor *schema.Descriptor) error {
	for name, property := range descriptor.Properties {
		if len(property.Enum) == 0 {
			continue
		}
		value, ok := candidate.Get(name)
		if !ok {
			continue
		}
		if !enumContains(property.Enum, value) {
			return &SchemaError{Fields: []string{
				fmt.Sprintf("field %s: value %v is not one of %v", name, value, property.Enum),
			}}
		}
	}
	return nil
}

// enumContains compares by printed representation to bridge the numeric types
// the YAML decoder and the tag parser produce (int vs int64 vs float64).
func enumContains(allowed []any, value any) bool {
	printed := fmt.Sprint(value)
	for _, candidate := range allowed {
		if fmt.Sprint(candidate) == printed {
			return true
		}
	}
	return false
}
