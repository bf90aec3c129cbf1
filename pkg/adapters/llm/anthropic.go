package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aretw0/agrimind/pkg/ports"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// Anthropic generates replies with the Messages API. The response schema is
// appended to the prompt since the API has no JSON mode.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropic creates an Anthropic generator.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// One outbound call per invocation.
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{
		client:    anthropic.NewClient(options...),
		model:     orDefault(cfg.Model, DefaultAnthropicModel),
		maxTokens: cfg.MaxOutputTokens,
	}, nil
}

// Generate sends one Messages request.
func (a *Anthropic) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	prompt, err := schemaInstruction(req.Prompt, req.Schema)
	if err != nil {
		return nil, err
	}

	var blocks []anthropic.ContentBlockParamUnion
	for _, att := range req.Attachments {
		blocks = append(blocks, anthropic.NewImageBlockBase64(att.MIMEType, base64.StdEncoding.EncodeToString(att.Data)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return nil, newProviderError(ProviderAnthropic, a.model, status, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return &ports.GenerateResponse{Text: b.String(), Model: orDefault(string(msg.Model), a.model)}, nil
}
