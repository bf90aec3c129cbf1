package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Reason categorizes why a provider request failed.
type Reason string

const (
	ReasonRateLimit      Reason = "rate_limit"
	ReasonAuth           Reason = "auth"
	ReasonTimeout        Reason = "timeout"
	ReasonServerError    Reason = "server_error"
	ReasonInvalidRequest Reason = "invalid_request"
	ReasonContentFilter  Reason = "content_filter"
	ReasonUnknown        Reason = "unknown"
)

// ProviderError represents a structured error from an LLM provider.
type ProviderError struct {
	Reason   Reason
	Provider string
	Model    string
	// Status is the HTTP status code, if known.
	Status  int
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	parts := []string{fmt.Sprintf("[%s]", e.Reason)}
	if e.Provider != "" {
		parts = append(parts, e.Provider)
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// newProviderError wraps cause, classifying it by status when known and by
// message otherwise.
func newProviderError(provider, model string, status int, cause error) *ProviderError {
	e := &ProviderError{
		Provider: provider,
		Model:    model,
		Status:   status,
		Cause:    cause,
		Reason:   ReasonUnknown,
	}
	if cause != nil {
		e.Message = cause.Error()
	}
	if status != 0 {
		e.Reason = classifyStatusCode(status)
	}
	if e.Reason == ReasonUnknown {
		e.Reason = ClassifyError(cause)
	}
	return e
}

// ClassifyError inspects an error and returns the matching Reason.
func ClassifyError(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "deadline exceeded", "etimedout"):
		return ReasonTimeout
	case containsAny(msg, "rate limit", "rate_limit", "too many requests", "429"):
		return ReasonRateLimit
	case containsAny(msg, "unauthorized", "invalid api key", "invalid_api_key", "authentication", "401", "403"):
		return ReasonAuth
	case containsAny(msg, "content_filter", "content policy", "safety", "blocked"):
		return ReasonContentFilter
	case containsAny(msg, "internal server", "server error", "500", "502", "503", "504"):
		return ReasonServerError
	default:
		return ReasonUnknown
	}
}

func classifyStatusCode(status int) Reason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonAuth
	case status == http.StatusTooManyRequests:
		return ReasonRateLimit
	case status == http.StatusBadRequest:
		return ReasonInvalidRequest
	case status >= 500:
		return ReasonServerError
	default:
		return ReasonUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// GetProviderError extracts a ProviderError from an error chain.
func GetProviderError(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr, true
	}
	return nil, false
}
