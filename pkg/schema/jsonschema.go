package schema

import "encoding/json"

// JSONSchema renders the schema as a JSON Schema object document.
// The result is what providers receive as the requested response shape and
// what the HTTP and MCP surfaces publish.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s))
	for _, name := range s.Fields() {
		props[name] = typeSchema(s[name])
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := s.Required(); len(req) > 0 {
		doc["required"] = req
	}
	return doc
}

// MarshalJSONSchema returns the JSON encoding of JSONSchema.
func (s Schema) MarshalJSONSchema() ([]byte, error) {
	return json.Marshal(s.JSONSchema())
}

func typeSchema(t Type) map[string]any {
	out := map[string]any{}
	var c *constraints
	if cc, ok := t.(constrained); ok {
		c = cc.base()
	}

	switch tt := t.(type) {
	case *StringType:
		out["type"] = "string"
		if c.minLen != nil {
			out["minLength"] = *c.minLen
		}
		if c.maxLen != nil {
			out["maxLength"] = *c.maxLen
		}
		if c.pattern != nil {
			out["pattern"] = c.pattern.String()
		}
	case *IntType:
		out["type"] = "integer"
		addRange(out, c)
	case *NumberType:
		out["type"] = "number"
		addRange(out, c)
	case *BoolType:
		out["type"] = "boolean"
	case *EnumType:
		out["type"] = "string"
		out["enum"] = tt.Members()
	case *DataURIType:
		out["type"] = "string"
		out["pattern"] = `^data:[^;,]+/[^;,]+;base64,`
	case *SliceType:
		out["type"] = "array"
		out["items"] = typeSchema(tt.elemType)
		if c.min != nil {
			out["minItems"] = int(*c.min)
		}
		if c.max != nil {
			out["maxItems"] = int(*c.max)
		}
	case *ObjectType:
		for k, v := range tt.fields.JSONSchema() {
			out[k] = v
		}
	}

	if c != nil && c.description != "" {
		out["description"] = c.description
	}
	return out
}

func addRange(out map[string]any, c *constraints) {
	if c.min != nil {
		out["minimum"] = *c.min
	}
	if c.max != nil {
		out["maximum"] = *c.max
	}
}
