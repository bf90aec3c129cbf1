// Package llm adapts hosted generative-AI services to ports.Generator.
//
// Each adapter performs exactly one request per Generate call. Retries and
// failover are left to callers; the invoker deliberately has none.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/agrimind/pkg/ports"
)

// Provider names accepted by New.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderFake      = "fake"
)

// DefaultMaxOutputTokens bounds replies when the config leaves it unset.
const DefaultMaxOutputTokens = 2048

// Config selects and configures a provider.
type Config struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	MaxOutputTokens int
}

// New builds the generator named by cfg.Provider.
func New(ctx context.Context, cfg Config) (ports.Generator, error) {
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderAnthropic:
		return NewAnthropic(cfg)
	case ProviderFake, "":
		return NewFake(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// schemaInstruction appends the expected response shape to the prompt for
// providers without native structured output.
func schemaInstruction(prompt string, schema map[string]any) (string, error) {
	if schema == nil {
		return prompt, nil
	}
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode response schema: %w", err)
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nRespond only with a JSON object (no prose, no code fences) matching this JSON Schema:\n")
	b.Write(raw)
	return b.String(), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
