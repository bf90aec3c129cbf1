package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AGRIMIND_PROVIDER_NAME", "fake")
	t.Setenv("AGRIMIND_STORE_BACKEND", "memory")
	t.Setenv("AGRIMIND_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^agrimind version \d+\.\d+\.\d+\n$`, out)
}

func TestActions_JSON(t *testing.T) {
	out, err := run(t, "actions", "--json")
	require.NoError(t, err)

	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 7)
	assert.Equal(t, "chat", infos[0]["name"])
}

func TestInvoke(t *testing.T) {
	out, err := run(t, "invoke", "weather-forecast", "--input", `{"location":"Nakuru, Kenya"}`)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "weather-forecast", res["action"])
	assert.Contains(t, res, "output")
}

func TestInvoke_ValidationExitCode(t *testing.T) {
	out, err := run(t, "invoke", "send-sms", "--input", `{"phoneNumber":"0712","message":"Rain tomorrow"}`)
	require.Error(t, err)
	assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	assert.Contains(t, out, `"kind": "validation"`)
}

func TestSeasonal_Crop(t *testing.T) {
	out, err := run(t, "seasonal", "--crop", "corn", "--json")
	require.NoError(t, err)

	var cal struct {
		Planting []struct{ Crop string } `json:"planting"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cal))
	require.Len(t, cal.Planting, 1)
	assert.Equal(t, "Corn", cal.Planting[0].Crop)
}

func TestConfigShow_Redacts(t *testing.T) {
	t.Setenv("AGRIMIND_PROVIDER_API_KEY", "sk-secret")
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "sk-secret")
	assert.Contains(t, out, "default_location: Central Valley, California")
}

func TestConfigSchema(t *testing.T) {
	out, err := run(t, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"provider"`)
}
