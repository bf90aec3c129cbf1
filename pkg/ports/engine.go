package ports

import (
	"context"

	"github.com/aretw0/agrimind/pkg/domain"
)

// ActionRunner is the interface used by adapters (HTTP, MCP, CLI) to execute actions.
// It is implemented by invoker.Invoker.
type ActionRunner interface {
	// Run invokes the named action and folds the outcome into a result.
	Run(ctx context.Context, name string, input map[string]any) domain.ActionResult

	// Actions returns the registered actions for introspection.
	Actions() []*domain.ActionSpec
}
