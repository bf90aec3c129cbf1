package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/agrimind/pkg/ports"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates replies with the Google Gen AI SDK.
// JSON actions use the native response schema support.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &Gemini{
		client:    client,
		model:     orDefault(cfg.Model, DefaultGeminiModel),
		maxTokens: cfg.MaxOutputTokens,
	}, nil
}

// Generate sends one GenerateContent request.
func (g *Gemini) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: geminiParts(req),
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.buildConfig(req))
	if err != nil {
		return nil, newProviderError(ProviderGemini, g.model, 0, err)
	}

	var b strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil {
					b.WriteString(part.Text)
				}
			}
			// One candidate is requested.
			break
		}
	}
	return &ports.GenerateResponse{Text: b.String(), Model: g.model}, nil
}

func geminiParts(req ports.GenerateRequest) []*genai.Part {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	for _, att := range req.Attachments {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     att.Data,
				MIMEType: att.MIMEType,
			},
		})
	}
	return append(parts, &genai.Part{Text: req.Prompt})
}

func (g *Gemini) buildConfig(req ports.GenerateRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = int32(min(g.maxTokens, math.MaxInt32))
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = req.Schema
	}
	return config
}
