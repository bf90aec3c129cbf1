package loam

import (
	"context"
	"testing"

	"github.com/aretw0/agrimind/internal/testutils"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompts_ByFileName(t *testing.T) {
	_, repo := testutils.SetupPromptRepo(t, map[string]string{
		"weather-forecast.md": `---
description: Shorter forecast
---
Forecast for {{.location}} in one sentence.`,
		"custom.md": `---
action: local-advisory
---
Advisory on {{.topic}} in {{.language}}.`,
	})

	prompts := New(loam.NewTypedRepository[PromptMetadata](repo))
	ctx := context.Background()

	body, ok, err := prompts.Prompt(ctx, "weather-forecast")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Forecast for {{.location}} in one sentence.", body)

	body, ok, err = prompts.Prompt(ctx, "local-advisory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, body, "{{.language}}")

	_, ok, err = prompts.Prompt(ctx, "chat")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := prompts.ListPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local-advisory", "weather-forecast"}, names)
}

func TestPrompts_DetectsCollisions(t *testing.T) {
	_, repo := testutils.SetupPromptRepo(t, map[string]string{
		"chat.md": `---
action: chat
---
One`,
		"other.md": `---
action: chat
---
Two`,
	})

	prompts := New(loam.NewTypedRepository[PromptMetadata](repo))
	_, err := prompts.ListPrompts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestPrompts_EmptyBody(t *testing.T) {
	_, repo := testutils.SetupPromptRepo(t, map[string]string{
		"chat.md": "---\ndescription: nothing here\n---\n",
	})

	prompts := New(loam.NewTypedRepository[PromptMetadata](repo))
	_, _, err := prompts.Prompt(context.Background(), "chat")
	assert.ErrorContains(t, err, "empty body")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"predict-yield.md": "---\naction: predict-yield\n---\nYield for {{.cropType}}",
	})

	prompts, err := Open(dir)
	require.NoError(t, err)

	body, ok, err := prompts.Prompt(context.Background(), "predict-yield")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Yield for {{.cropType}}", body)
}
