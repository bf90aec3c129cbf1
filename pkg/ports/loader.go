package ports

import "context"

// PromptSource provides instruction templates that override the built-in
// ones. Templates are Go text/template bodies keyed by action name.
type PromptSource interface {
	// Prompt returns the template body for the action.
	// ok is false when the source has no override for it.
	Prompt(ctx context.Context, action string) (body string, ok bool, err error)

	// ListPrompts returns the action names with an override.
	ListPrompts(ctx context.Context) ([]string, error)
}
