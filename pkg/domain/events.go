package domain

import (
	"context"
	"time"
)

// Outcome of a finished invocation. "ok" or one of the Kind* names.
const OutcomeOK = "ok"

// InvocationEvent describes one invocation, before and after the call.
type InvocationEvent struct {
	ID        string        `json:"id"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	Outcome   string        `json:"outcome,omitempty"`
	Err       error         `json:"-"`
}

// InvocationHooks defines callbacks for invoker observability.
type InvocationHooks struct {
	OnInvoke func(context.Context, *InvocationEvent)
	OnResult func(context.Context, *InvocationEvent)
}

// Merge returns hooks calling h first and then other.
func (h InvocationHooks) Merge(other InvocationHooks) InvocationHooks {
	return InvocationHooks{
		OnInvoke: chain(h.OnInvoke, other.OnInvoke),
		OnResult: chain(h.OnResult, other.OnResult),
	}
}

func chain(a, b func(context.Context, *InvocationEvent)) func(context.Context, *InvocationEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *InvocationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
