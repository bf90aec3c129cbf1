package memory

import (
	"context"
	"maps"
	"slices"
)

// Prompts implements ports.PromptSource using an in-memory map of
// action name to template body.
type Prompts struct {
	bodies map[string]string
}

// NewPrompts creates a prompt source from the given bodies.
func NewPrompts(bodies map[string]string) *Prompts {
	return &Prompts{bodies: maps.Clone(bodies)}
}

// Prompt returns the body registered for an action.
func (p *Prompts) Prompt(ctx context.Context, action string) (string, bool, error) {
	body, ok := p.bodies[action]
	return body, ok, nil
}

// ListPrompts returns the action names with an override, sorted.
func (p *Prompts) ListPrompts(ctx context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(p.bodies)), nil
}
