package schema

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "number").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Option adds a constraint to a built-in type.
type Option func(*constraints)

// constraints are shared by the built-in types. They are unexported so a
// Type cannot be changed after construction.
type constraints struct {
	min, max       *float64
	minLen, maxLen *int
	pattern        *regexp.Regexp
	description    string
	optional       bool
}

func (c *constraints) base() *constraints { return c }

type constrained interface {
	base() *constraints
}

// Min sets the inclusive lower bound of a numeric field (or minimum item count of a slice).
func Min(v float64) Option { return func(c *constraints) { c.min = &v } }

// Max sets the inclusive upper bound of a numeric field (or maximum item count of a slice).
func Max(v float64) Option { return func(c *constraints) { c.max = &v } }

// Range is shorthand for Min(lo) and Max(hi).
func Range(lo, hi float64) Option {
	return func(c *constraints) {
		c.min = &lo
		c.max = &hi
	}
}

// MinLen sets the minimum length, in characters, of a string field.
func MinLen(n int) Option { return func(c *constraints) { c.minLen = &n } }

// MaxLen sets the maximum length, in characters, of a string field.
func MaxLen(n int) Option { return func(c *constraints) { c.maxLen = &n } }

// Pattern requires a string field to match the regular expression.
// It panics if expr does not compile, like regexp.MustCompile.
func Pattern(expr string) Option {
	re := regexp.MustCompile(expr)
	return func(c *constraints) { c.pattern = re }
}

// Describe attaches a human-readable description, exported in JSON Schema.
func Describe(text string) Option { return func(c *constraints) { c.description = text } }

// Optional marks the field as not required.
func Optional() Option { return func(c *constraints) { c.optional = true } }

func apply(opts []Option) constraints {
	var c constraints
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// IsOptional reports whether a field of this type may be omitted.
func IsOptional(t Type) bool {
	if c, ok := t.(constrained); ok {
		return c.base().optional
	}
	return false
}

// DescriptionOf returns the description attached with Describe, if any.
func DescriptionOf(t Type) string {
	if c, ok := t.(constrained); ok {
		return c.base().description
	}
	return ""
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{ constraints }

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	n := utf8.RuneCountInString(s)
	if t.minLen != nil && n < *t.minLen {
		return fmt.Errorf("must be at least %d characters", *t.minLen)
	}
	if t.maxLen != nil && n > *t.maxLen {
		return fmt.Errorf("must be at most %d characters", *t.maxLen)
	}
	if t.pattern != nil && !t.pattern.MatchString(s) {
		return fmt.Errorf("does not match pattern %s", t.pattern.String())
	}
	return nil
}

// IntType validates integer values.
type IntType struct{ constraints }

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("expected int, got non-finite float")
		}
		if v != float64(int64(v)) {
			return fmt.Errorf("expected int, got float (not a whole number)")
		}
		f = v
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return fmt.Errorf("expected int, got %q", v.String())
		}
		f = float64(i)
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
	return t.checkRange(f)
}

// NumberType validates numeric values. Integers are accepted.
type NumberType struct{ constraints }

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	return t.checkRange(f)
}

func (c *constraints) checkRange(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("must be a finite number")
	}
	if c.min != nil && f < *c.min {
		return fmt.Errorf("must be >= %v", *c.min)
	}
	if c.max != nil && f > *c.max {
		return fmt.Errorf("must be <= %v", *c.max)
	}
	return nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// BoolType validates boolean values.
type BoolType struct{ constraints }

func (t *BoolType) Name() string { return "boolean" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

// EnumType validates that a string is one of a fixed set of members.
type EnumType struct {
	constraints
	members []string
}

func (t *EnumType) Name() string { return "enum" }

// Members returns a copy of the allowed values.
func (t *EnumType) Members() []string { return slices.Clone(t.members) }

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected one of [%s], got %T", strings.Join(t.members, ", "), value)
	}
	if !slices.Contains(t.members, s) {
		return fmt.Errorf("must be one of [%s]", strings.Join(t.members, ", "))
	}
	return nil
}

// SliceType validates slices of a specific element type.
// Min and Max bound the number of elements.
type SliceType struct {
	constraints
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

func (t *SliceType) Validate(value any) error {
	errs := validateValue("", t, value)
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func (t *SliceType) checkLen(n int) error {
	if t.min != nil && float64(n) < *t.min {
		return fmt.Errorf("must have at least %v items", *t.min)
	}
	if t.max != nil && float64(n) > *t.max {
		return fmt.Errorf("must have at most %v items", *t.max)
	}
	return nil
}

// ObjectType validates a nested record against its own schema.
type ObjectType struct {
	constraints
	fields Schema
}

func (t *ObjectType) Name() string { return "object" }

// Fields returns a copy of the nested schema.
func (t *ObjectType) Fields() Schema { return t.fields.Clone() }

func (t *ObjectType) Validate(value any) error {
	errs := validateValue("", t, value)
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// DataURIType validates a self-describing base64 payload of the form
// data:<mimetype>;base64,<payload>.
type DataURIType struct{ constraints }

// DefaultMaxDataURIBytes bounds decoded attachment payloads (10 MiB).
const DefaultMaxDataURIBytes = 10 << 20

func (t *DataURIType) Name() string { return "datauri" }

func (t *DataURIType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected data URI string, got %T", value)
	}
	mime, payload, err := SplitDataURI(s)
	if err != nil {
		return err
	}
	if !strings.Contains(mime, "/") {
		return fmt.Errorf("data URI has invalid MIME type %q", mime)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > DefaultMaxDataURIBytes {
		return fmt.Errorf("data URI payload exceeds %d bytes", DefaultMaxDataURIBytes)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return fmt.Errorf("data URI payload is not valid base64")
	}
	return nil
}

// SplitDataURI returns the MIME type and base64 payload of a data URI.
func SplitDataURI(s string) (mime, payload string, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", "", fmt.Errorf("expected data URI (data:<mimetype>;base64,<payload>)")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("data URI is missing payload separator")
	}
	mime, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("data URI must use base64 encoding")
	}
	if mime == "" {
		return "", "", fmt.Errorf("data URI is missing MIME type")
	}
	return mime, payload, nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	constraints
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String(opts ...Option) Type { return &StringType{constraints: apply(opts)} }

// Int creates an integer type validator.
func Int(opts ...Option) Type { return &IntType{constraints: apply(opts)} }

// Number creates a numeric type validator.
func Number(opts ...Option) Type { return &NumberType{constraints: apply(opts)} }

// Float is an alias of Number.
func Float(opts ...Option) Type { return Number(opts...) }

// Bool creates a boolean type validator.
func Bool(opts ...Option) Type { return &BoolType{constraints: apply(opts)} }

// Enum creates a validator accepting only the given string members.
func Enum(members []string, opts ...Option) Type {
	return &EnumType{constraints: apply(opts), members: slices.Clone(members)}
}

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type, opts ...Option) Type {
	return &SliceType{constraints: apply(opts), elemType: elemType}
}

// Object creates a validator for a nested record.
func Object(fields Schema, opts ...Option) Type {
	return &ObjectType{constraints: apply(opts), fields: fields.Clone()}
}

// DataURI creates a validator for base64 data URIs.
func DataURI(opts ...Option) Type {
	return &DataURIType{constraints: apply(opts)}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error, opts ...Option) Type {
	return &CustomType{constraints: apply(opts), name: name, validate: validate}
}

// asRecord accepts map[string]any and any other map keyed by strings.
func asRecord(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
