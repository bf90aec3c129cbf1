package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agrimind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, 60*time.Second, cfg.Invoker.Timeout)
	assert.Equal(t, 8, cfg.Invoker.MaxConcurrent)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 720*time.Hour, cfg.Store.TTL)
	assert.Equal(t, "Central Valley, California", cfg.Weather.DefaultLocation)
	assert.Equal(t, 4096, cfg.Input.MaxSize)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
provider:
  name: openai
  model: gpt-4o-mini
invoker:
  timeout: 15s
store:
  backend: redis
  redis_addr: redis:6379
weather:
  default_location: Nakuru, Kenya
`)
	t.Setenv("AGRIMIND_PROVIDER_MODEL", "gpt-4o")
	t.Setenv("AGRIMIND_INVOKER_MAX_CONCURRENT", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "gpt-4o", cfg.Provider.Model, "environment wins over the file")
	assert.Equal(t, 15*time.Second, cfg.Invoker.Timeout)
	assert.Equal(t, 2, cfg.Invoker.MaxConcurrent)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "Nakuru, Kenya", cfg.Weather.DefaultLocation)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Provider: ProviderConfig{Name: "fake"},
			Server:   ServerConfig{Addr: ":8080"},
			Store:    StoreConfig{Backend: "memory"},
			SMS:      SMSConfig{Gateway: "simulated"},
			Log:      LogConfig{Level: "info", Format: "text"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.Provider.Name = "llama" }, "provider.name"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, "store.backend"},
		{"redis without address", func(c *Config) { c.Store.Backend = "redis" }, "store.redis_addr"},
		{"file without path", func(c *Config) { c.Store.Backend = "file" }, "store.path"},
		{"negative concurrency", func(c *Config) { c.Invoker.MaxConcurrent = -1 }, "invoker.max_concurrent"},
		{"bad encryption key", func(c *Config) { c.Store.EncryptionKey = "not base64!" }, "store.encryption_key"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"command gateway without command", func(c *Config) { c.SMS.Gateway = "command" }, "sms.command"},
		{"bad base url", func(c *Config) { c.Provider.BaseURL = "localhost" }, "provider.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{
		Provider: ProviderConfig{APIKey: "sk-secret"},
		Store:    StoreConfig{EncryptionKey: "a2V5", FallbackKeys: []string{"b2xk"}},
	}

	r := cfg.Redacted()

	assert.NotContains(t, r.Provider.APIKey, "secret")
	assert.NotEqual(t, "a2V5", r.Store.EncryptionKey)
	assert.NotEqual(t, "b2xk", r.Store.FallbackKeys[0])
	assert.Equal(t, "sk-secret", cfg.Provider.APIKey)
	assert.Equal(t, "b2xk", cfg.Store.FallbackKeys[0])
}

func TestJSONSchema(t *testing.T) {
	raw, err := JSONSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	props, _ := doc["properties"].(map[string]any)
	require.NotNil(t, props)
	for _, section := range []string{"provider", "invoker", "store", "weather", "log"} {
		assert.Contains(t, props, section)
	}
	assert.Contains(t, string(raw), `"anthropic"`)
}
