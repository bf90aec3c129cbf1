package schema

import (
	"net/url"
	"strconv"
	"strings"
)

// FromValues builds a record from form-encoded values, converting each
// field according to its declared type. Nested object fields use dotted
// names ("soilData.pHLevel"). Values that fail to convert are kept as
// strings so Validate reports them against the right field.
func FromValues(s Schema, values url.Values) map[string]any {
	return fromValues("", s, values)
}

func fromValues(prefix string, s Schema, values url.Values) map[string]any {
	out := make(map[string]any)
	for _, name := range s.Fields() {
		path := joinPath(prefix, name)
		switch t := s[name].(type) {
		case *ObjectType:
			if nested := fromValues(path, t.fields, values); len(nested) > 0 {
				out[name] = nested
			}
		case *SliceType:
			// Only scalar slices can be expressed as repeated form keys.
			raw, ok := values[path]
			if !ok {
				continue
			}
			items := make([]any, 0, len(raw))
			for _, v := range raw {
				items = append(items, coerceScalar(t.elemType, v))
			}
			out[name] = items
		default:
			if !values.Has(path) {
				continue
			}
			out[name] = coerceScalar(t, values.Get(path))
		}
	}
	return out
}

func coerceScalar(t Type, raw string) any {
	switch t.(type) {
	case *NumberType:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
	case *IntType:
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return i
		}
	case *BoolType:
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return b
		}
	}
	return raw
}
