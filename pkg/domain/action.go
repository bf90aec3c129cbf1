package domain

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/agrimind/pkg/schema"
)

// TemplateFunc renders a validated input record into the instruction sent
// to the generative service. It must be pure.
type TemplateFunc func(input map[string]any) (string, error)

// DirectFunc performs the single outbound call of an action itself instead
// of delegating to the generative service. The returned record is still
// validated against the action's output schema.
type DirectFunc func(ctx context.Context, input map[string]any, instruction string) (map[string]any, error)

// ActionSpec describes one supported AI-backed action.
type ActionSpec struct {
	// Name is the unique identifier, e.g. "predict-yield".
	Name        string
	Description string

	Input  schema.Schema
	Output schema.Schema

	Template TemplateFunc

	// Attachment names the input field carrying a data URI whose payload is
	// sent alongside the instruction.
	Attachment string

	// TextField switches the action to free-text mode: the reply is wrapped
	// into {TextField: text} before output validation.
	TextField string

	// Direct replaces the generative call (e.g. an SMS gateway).
	Direct DirectFunc
}

var actionName = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Validate checks that the spec is complete enough to be registered.
func (s *ActionSpec) Validate() error {
	if !actionName.MatchString(s.Name) {
		return fmt.Errorf("%w: name %q must be kebab-case", ErrInvalidSpec, s.Name)
	}
	if s.Template == nil {
		return fmt.Errorf("%w: %s has no template", ErrInvalidSpec, s.Name)
	}
	if len(s.Output) == 0 {
		return fmt.Errorf("%w: %s has no output fields", ErrInvalidSpec, s.Name)
	}
	if s.Attachment != "" {
		if _, ok := s.Input[s.Attachment].(*schema.DataURIType); !ok {
			return fmt.Errorf("%w: %s attachment field %q must be a data URI input", ErrInvalidSpec, s.Name, s.Attachment)
		}
	}
	if s.TextField != "" {
		if _, ok := s.Output[s.TextField].(*schema.StringType); !ok {
			return fmt.Errorf("%w: %s text field %q must be a string output", ErrInvalidSpec, s.Name, s.TextField)
		}
	}
	return nil
}

// Clone returns a copy whose schemas can't be mutated through the original.
func (s *ActionSpec) Clone() *ActionSpec {
	c := *s
	c.Input = s.Input.Clone()
	c.Output = s.Output.Clone()
	return &c
}

// ActionInfo is the serialisable description of a registered action.
type ActionInfo struct {
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description" yaml:"description"`
	InputSchema  map[string]any `json:"input_schema" yaml:"input_schema"`
	OutputSchema map[string]any `json:"output_schema" yaml:"output_schema"`
	Attachment   string         `json:"attachment,omitempty" yaml:"attachment,omitempty"`
}

// Info describes the spec with JSON Schemas for its input and output.
func (s *ActionSpec) Info() ActionInfo {
	return ActionInfo{
		Name:         s.Name,
		Description:  s.Description,
		InputSchema:  s.Input.JSONSchema(),
		OutputSchema: s.Output.JSONSchema(),
		Attachment:   s.Attachment,
	}
}
