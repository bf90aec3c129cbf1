package schema

import (
	"encoding/json"
	"strings"
)

// Signature renders the schema on one line, optional fields suffixed with
// "?": "crop?:string location:string".
func (s Schema) Signature() string {
	parts := make([]string, 0, len(s))
	for _, name := range s.Fields() {
		t := s[name]
		if IsOptional(t) {
			name += "?"
		}
		parts = append(parts, name+":"+t.Name())
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the schema as its JSON Schema document.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.JSONSchema())
}
