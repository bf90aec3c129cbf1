package ports

import (
	"context"

	"github.com/aretw0/agrimind/pkg/domain"
)

// GenerateRequest is one call to a generative service.
type GenerateRequest struct {
	// Action is the name of the action being invoked, for logging and metrics.
	Action string
	// Prompt is the rendered instruction.
	Prompt      string
	Attachments []domain.Attachment
	// Schema is the JSON Schema the reply must conform to.
	// Nil requests free text.
	Schema map[string]any
}

// GenerateResponse carries the raw reply.
type GenerateResponse struct {
	Text  string
	Model string
}

// Generator is the external generative-AI service.
// Implementations perform exactly one outbound call per Generate and never retry.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
