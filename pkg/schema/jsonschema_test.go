package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	s := Schema{
		"condition": Enum([]string{"Sunny", "Rainy"}),
		"humidity":  Number(Range(0, 100), Describe("relative humidity in percent")),
		"phone":     String(Pattern(`^\+\d+$`), MaxLen(16)),
		"photo":     DataURI(),
		"tips":      Slice(String(), Min(1)),
		"notes":     String(Optional()),
		"soil": Object(Schema{
			"texture": String(MinLen(2)),
		}),
	}

	raw, err := s.MarshalJSONSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []any{"condition", "humidity", "phone", "photo", "soil", "tips"}, doc["required"])

	props := doc["properties"].(map[string]any)

	humidity := props["humidity"].(map[string]any)
	assert.Equal(t, "number", humidity["type"])
	assert.Equal(t, 0.0, humidity["minimum"])
	assert.Equal(t, 100.0, humidity["maximum"])
	assert.Equal(t, "relative humidity in percent", humidity["description"])

	condition := props["condition"].(map[string]any)
	assert.Equal(t, []any{"Sunny", "Rainy"}, condition["enum"])

	phone := props["phone"].(map[string]any)
	assert.Equal(t, `^\+\d+$`, phone["pattern"])
	assert.Equal(t, 16.0, phone["maxLength"])

	tips := props["tips"].(map[string]any)
	assert.Equal(t, "array", tips["type"])
	assert.Equal(t, 1.0, tips["minItems"])

	soil := props["soil"].(map[string]any)
	assert.Equal(t, "object", soil["type"])
	assert.Equal(t, []any{"texture"}, soil["required"])

	photo := props["photo"].(map[string]any)
	assert.Equal(t, "string", photo["type"])
	assert.Contains(t, photo["pattern"], "base64")
}

func TestJSONSchema_NoRequired(t *testing.T) {
	doc := Schema{"notes": String(Optional())}.JSONSchema()
	_, ok := doc["required"]
	assert.False(t, ok)
}
