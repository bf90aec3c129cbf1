package invoker

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/agrimind/pkg/schema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// decodeReply turns raw provider text into a record.
// Markdown code fences around the JSON are tolerated.
func decodeReply(text string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("decode reply: expected a JSON object")
	}
	return out, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (``` or ```json).
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// normalize round-trips a record through JSON so Go values produced by
// direct calls look exactly like decoded provider replies.
func normalize(record map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return out, nil
}

// validateOutput checks a decoded record against the output schema.
func validateOutput(action string, s schema.Schema, record map[string]any) error {
	compiled, err := compileOutputSchema(action, s)
	if err != nil {
		return fmt.Errorf("compile output schema: %w", err)
	}
	if err := compiled.Validate(any(record)); err != nil {
		return err
	}
	return nil
}

var schemaCache sync.Map

func compileOutputSchema(action string, s schema.Schema) (*jsonschema.Schema, error) {
	raw, err := s.MarshalJSONSchema()
	if err != nil {
		return nil, err
	}

	key := string(raw)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString(action+".output.schema.json", key)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}
