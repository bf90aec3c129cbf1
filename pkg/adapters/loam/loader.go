package loam

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
)

// Prompts adapts a Loam repository to ports.PromptSource.
// Each document (e.g. predict-yield.md) overrides the instruction template
// of one action.
type Prompts struct {
	Repo *loam.TypedRepository[PromptMetadata]
}

// New creates a new Loam prompt source.
func New(repo *loam.TypedRepository[PromptMetadata]) *Prompts {
	return &Prompts{Repo: repo}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Prompts, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid prompts path: %w", err)
	}

	// Strict mode keeps numbers consistent across formats; read-only stops
	// Loam from creating a sandbox copy.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PromptMetadata](repo)), nil
}

// Prompt returns the template body for an action.
func (p *Prompts) Prompt(ctx context.Context, action string) (string, bool, error) {
	bodies, err := p.index(ctx)
	if err != nil {
		return "", false, err
	}
	body, ok := bodies[action]
	return body, ok, nil
}

// ListPrompts returns the actions that have an override, sorted.
func (p *Prompts) ListPrompts(ctx context.Context) ([]string, error) {
	bodies, err := p.index(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(bodies)), nil
}

func (p *Prompts) index(ctx context.Context) (map[string]string, error) {
	docs, err := p.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	bodies := make(map[string]string, len(docs))
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		action := doc.Data.Action
		if action == "" {
			action = trimExtension(doc.ID)
		}
		if existing, ok := seen[action]; ok {
			return nil, fmt.Errorf("collision detected: prompt '%s' is defined in both '%s' and '%s'", action, existing, doc.ID)
		}
		seen[action] = doc.ID

		body := strings.TrimSpace(doc.Content)
		if body == "" {
			return nil, fmt.Errorf("prompt '%s' (%s) has an empty body", action, doc.ID)
		}
		bodies[action] = body
	}
	return bodies, nil
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	return strings.TrimSuffix(id, filepath.Ext(id))
}
