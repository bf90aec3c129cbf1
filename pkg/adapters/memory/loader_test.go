package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/agrimind/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompts(t *testing.T) {
	src := map[string]string{
		"weather-forecast": "Forecast for {{.location}}",
		"chat":             "{{.message}}",
	}
	p := memory.NewPrompts(src)
	src["chat"] = "mutated"

	body, ok, err := p.Prompt(context.Background(), "chat")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{{.message}}", body)

	_, ok, err = p.Prompt(context.Background(), "send-sms")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := p.ListPrompts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"chat", "weather-forecast"}, names)
}
