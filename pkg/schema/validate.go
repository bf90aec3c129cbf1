package schema

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Schema is a map of field names to their expected types.
// Example: {"cropType": String(MinLen(2)), "humidity": Number(Range(0, 100))}
type Schema map[string]Type

// Fields returns the field names in sorted order.
func (s Schema) Fields() []string {
	return slices.Sorted(maps.Keys(s))
}

// Required returns the sorted names of fields that are not optional.
func (s Schema) Required() []string {
	var out []string
	for _, name := range s.Fields() {
		if !IsOptional(s[name]) {
			out = append(out, name)
		}
	}
	return out
}

// Clone returns a copy of the schema map. Types are immutable and shared.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Validate checks if data conforms to the schema.
// Nested objects and slices are walked; failures are reported with dotted
// paths such as "soilData.pHLevel" or "history[1].role".
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	errs := validateRecord("", schema, data)

	// If there are errors, aggregate them
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

func validateRecord(prefix string, schema Schema, data map[string]any) []error {
	var errs []error

	// Sorted for stable error ordering
	for _, fieldName := range schema.Fields() {
		fieldType := schema[fieldName]
		path := joinPath(prefix, fieldName)

		value, exists := data[fieldName]
		if !exists || value == nil {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    path,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		errs = append(errs, validateValue(path, fieldType, value)...)
	}

	return errs
}

func validateValue(path string, t Type, value any) []error {
	switch tt := t.(type) {
	case *ObjectType:
		record, ok := asRecord(value)
		if !ok {
			return []error{&ValidationError{Key: path, Reason: fmt.Sprintf("expected object, got %T", value), Value: value}}
		}
		return validateRecord(path, tt.fields, record)

	case *SliceType:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return []error{&ValidationError{Key: path, Reason: fmt.Sprintf("expected slice, got %T", value), Value: value}}
		}
		if err := tt.checkLen(rv.Len()); err != nil {
			return []error{&ValidationError{Key: path, Reason: err.Error(), Value: value}}
		}
		var errs []error
		for i := 0; i < rv.Len(); i++ {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			elem := rv.Index(i).Interface()
			if elem == nil {
				errs = append(errs, &ValidationError{Key: elemPath, Reason: "required"})
				continue
			}
			errs = append(errs, validateValue(elemPath, tt.elemType, elem)...)
		}
		return errs

	default:
		if err := t.Validate(value); err != nil {
			return []error{&ValidationError{Key: path, Reason: err.Error(), Value: value}}
		}
		return nil
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
