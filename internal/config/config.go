// Package config loads AgriMind settings from an optional .env file, an
// optional agrimind.yaml and AGRIMIND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. AGRIMIND_PROVIDER_NAME.
	EnvPrefix  = "AGRIMIND"
	configName = "agrimind"
)

// Config is the full application configuration.
type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider" yaml:"provider"`
	Invoker   InvokerConfig   `mapstructure:"invoker" yaml:"invoker"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Chat      ChatConfig      `mapstructure:"chat" yaml:"chat"`
	Geocoding GeocodingConfig `mapstructure:"geocoding" yaml:"geocoding"`
	Weather   WeatherConfig   `mapstructure:"weather" yaml:"weather"`
	SMS       SMSConfig       `mapstructure:"sms" yaml:"sms"`
	Input     InputConfig     `mapstructure:"input" yaml:"input"`
	Prompts   PromptsConfig   `mapstructure:"prompts" yaml:"prompts"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ProviderConfig struct {
	Name            string `mapstructure:"name" yaml:"name" validate:"oneof=gemini openai anthropic fake" jsonschema:"enum=gemini,enum=openai,enum=anthropic,enum=fake"`
	Model           string `mapstructure:"model" yaml:"model" jsonschema_description:"Model name; empty selects the provider default"`
	APIKey          string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url" jsonschema_description:"OpenAI-compatible endpoint"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens" yaml:"max_output_tokens" validate:"min=0"`
}

type InvokerConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" jsonschema:"type=string" jsonschema_description:"Per-invocation timeout, e.g. 60s; 0 disables it"`
	MaxConcurrent int           `mapstructure:"max_concurrent" yaml:"max_concurrent" validate:"min=0" jsonschema_description:"Cap on concurrent outbound calls; 0 is unlimited"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required"`
}

type StoreConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend" validate:"oneof=memory file redis" jsonschema:"enum=memory,enum=file,enum=redis"`
	Path          string        `mapstructure:"path" yaml:"path" validate:"required_if=Backend file"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db" validate:"min=0"`
	Prefix        string        `mapstructure:"prefix" yaml:"prefix"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl" jsonschema:"type=string" jsonschema_description:"Conversation expiry in Redis; 0 keeps them forever"`
	LockTTL       time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl" jsonschema:"type=string"`
	EncryptionKey string        `mapstructure:"encryption_key" yaml:"encryption_key" validate:"omitempty,base64" jsonschema_description:"Base64 AES-256 key enabling encryption at rest"`
	FallbackKeys  []string      `mapstructure:"fallback_keys" yaml:"fallback_keys" validate:"dive,base64" jsonschema_description:"Previous keys still accepted for reading"`
	MaskPII       bool          `mapstructure:"mask_pii" yaml:"mask_pii"`
}

type ChatConfig struct {
	MaxHistory int `mapstructure:"max_history" yaml:"max_history" validate:"min=0"`
}

type GeocodingConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" jsonschema:"type=string"`
}

type WeatherConfig struct {
	DefaultLocation string `mapstructure:"default_location" yaml:"default_location"`
}

type SMSConfig struct {
	Gateway string   `mapstructure:"gateway" yaml:"gateway" validate:"oneof=simulated command" jsonschema:"enum=simulated,enum=command"`
	Command string   `mapstructure:"command" yaml:"command" validate:"required_if=Gateway command" jsonschema_description:"Program run once per message; receives AGRIMIND_SMS_PHONE and AGRIMIND_SMS_MESSAGE"`
	Args    []string `mapstructure:"args" yaml:"args"`
}

type InputConfig struct {
	MaxSize int `mapstructure:"max_size" yaml:"max_size" validate:"min=0" jsonschema_description:"Byte limit per free-text field"`
}

type PromptsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" jsonschema_description:"Directory of markdown prompt overrides named after actions"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json" jsonschema:"enum=text,enum=json"`
}

// Defaults are applied before the config file and the environment.
var Defaults = map[string]any{
	"provider.name":              "gemini",
	"provider.model":             "",
	"provider.api_key":           "",
	"provider.base_url":          "",
	"provider.max_output_tokens": 2048,
	"invoker.timeout":            "60s",
	"invoker.max_concurrent":     8,
	"server.addr":                ":8080",
	"store.backend":              "file",
	"store.path":                 ".agrimind/conversations",
	"store.redis_addr":           "localhost:6379",
	"store.redis_password":       "",
	"store.redis_db":             0,
	"store.prefix":               "agrimind:conversation:",
	"store.ttl":                  "720h",
	"store.lock_ttl":             "30s",
	"store.encryption_key":       "",
	"store.fallback_keys":        []string{},
	"store.mask_pii":             false,
	"chat.max_history":           20,
	"geocoding.base_url":         "https://nominatim.openstreetmap.org",
	"geocoding.user_agent":       "agrimind",
	"geocoding.timeout":          "5s",
	"weather.default_location":   "Central Valley, California",
	"sms.gateway":                "simulated",
	"sms.command":                "",
	"sms.args":                   []string{},
	"input.max_size":             4096,
	"prompts.dir":                "",
	"log.level":                  "info",
	"log.format":                 "text",
}

// Load reads the configuration. configFile may be empty, in which case
// agrimind.yaml is looked up in the working directory and in ~/.agrimind;
// a missing file is not an error then.
func Load(configFile string) (*Config, error) {
	// It's okay if .env doesn't exist.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".agrimind"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the structural constraints. The provider API key is
// checked when the generator is built so offline commands work without one.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	const mask = "********"
	if c.Provider.APIKey != "" {
		c.Provider.APIKey = mask
	}
	if c.Store.RedisPassword != "" {
		c.Store.RedisPassword = mask
	}
	if c.Store.EncryptionKey != "" {
		c.Store.EncryptionKey = mask
	}
	if len(c.Store.FallbackKeys) > 0 {
		keys := make([]string, len(c.Store.FallbackKeys))
		for i := range keys {
			keys[i] = mask
		}
		c.Store.FallbackKeys = keys
	}
	return c
}
