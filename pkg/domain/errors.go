package domain

import (
	"errors"
	"fmt"

	"github.com/aretw0/agrimind/pkg/schema"
)

// Failure kinds. An *ActionError wraps exactly one of them.
var (
	// ErrValidation is returned when the input violates the action's input schema.
	ErrValidation = errors.New("validation error")
	// ErrTransport is returned when the outbound call fails, times out or is canceled.
	ErrTransport = errors.New("transport error")
	// ErrSchemaMismatch is returned when the reply can't be decoded into the output schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrEmptyResponse is returned when the service replied with no payload at all.
	ErrEmptyResponse = errors.New("empty response")
	// ErrActionNotFound is returned when no action is registered under a name.
	ErrActionNotFound = errors.New("action not found")
	// ErrInternal covers template failures and other local faults.
	ErrInternal = errors.New("internal error")
)

// Registration and storage errors.
var (
	// ErrActionExists is returned when registering a name twice.
	ErrActionExists = errors.New("action already registered")
	// ErrInvalidSpec is returned when an ActionSpec is incomplete.
	ErrInvalidSpec = errors.New("invalid action spec")
	// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrInvalidConversationID is returned when a store cannot accept a conversation ID.
	ErrInvalidConversationID = errors.New("invalid conversation id")
)

// FieldError names one offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ActionError is the error returned by a failed invocation.
type ActionError struct {
	Kind    error
	Action  string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *ActionError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Action, e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause, so errors.Is(err, ErrValidation)
// and errors.As(err, &providerErr) both work.
func (e *ActionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewActionError wraps cause under kind.
func NewActionError(kind error, action string, cause error) *ActionError {
	msg := kind.Error()
	if cause != nil {
		msg = cause.Error()
	}
	return &ActionError{Kind: kind, Action: action, Message: msg, Err: cause}
}

// NewValidationError builds a validation failure from a schema error,
// carrying every failing field path.
func NewValidationError(action string, cause error) *ActionError {
	e := NewActionError(ErrValidation, action, cause)
	for _, f := range schema.FieldErrors(cause) {
		e.Fields = append(e.Fields, FieldError{Field: f.Key, Reason: f.Reason})
	}
	return e
}

// Kind names used on the wire.
const (
	KindValidation     = "validation"
	KindTransport      = "transport"
	KindSchemaMismatch = "schema_mismatch"
	KindEmptyResponse  = "empty_response"
	KindUnknownAction  = "unknown_action"
	KindInternal       = "internal"
)

// KindOf returns the wire name of the failure kind carried by err.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidConversationID):
		return KindValidation
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrActionNotFound):
		return KindUnknownAction
	default:
		return KindInternal
	}
}
