package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI generates replies through any OpenAI-compatible chat completions API.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI creates an OpenAI generator. BaseURL points it at compatible
// servers (OpenRouter, Ollama, vLLM).
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("openai: API key is required")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     orDefault(cfg.Model, DefaultOpenAIModel),
		maxTokens: cfg.MaxOutputTokens,
	}, nil
}

// Generate sends one chat completion request.
func (o *OpenAI) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Attachments) == 0 {
		msg.Content = req.Prompt
	} else {
		parts := []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		}}
		for _, att := range req.Attachments {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    att.DataURI(),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		msg.MultiContent = parts
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  []openai.ChatCompletionMessage{msg},
		MaxTokens: o.maxTokens,
	}
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema)
		if err != nil {
			return nil, fmt.Errorf("openai: encode response schema: %w", err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName(req.Action),
				Schema: json.RawMessage(raw),
			},
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, newProviderError(ProviderOpenAI, o.model, openAIStatus(err), err)
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	return &ports.GenerateResponse{Text: text, Model: orDefault(resp.Model, o.model)}, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// schemaName turns an action name into an identifier accepted as a
// response format name.
func schemaName(action string) string {
	if action == "" {
		return "response"
	}
	return strings.ReplaceAll(action, "-", "_")
}
