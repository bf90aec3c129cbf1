package invoker

import (
	"log/slog"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"golang.org/x/sync/semaphore"
)

// Option defines a functional option for configuring the Invoker.
type Option func(*Invoker)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// WithHooks registers invocation callbacks. Multiple calls are merged.
func WithHooks(hooks domain.InvocationHooks) Option {
	return func(i *Invoker) {
		i.hooks = i.hooks.Merge(hooks)
	}
}

// WithTimeout bounds each outbound call, including the wait for a slot.
// Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		i.timeout = d
	}
}

// WithMaxConcurrent caps the number of outbound calls in flight.
// Zero or negative means unbounded.
func WithMaxConcurrent(n int) Option {
	return func(i *Invoker) {
		if n > 0 {
			i.slots = semaphore.NewWeighted(int64(n))
		} else {
			i.slots = nil
		}
	}
}

// WithMaxInputSize sets the per-field byte limit applied to free-text input.
// Zero falls back to AGRIMIND_MAX_INPUT_SIZE or DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(i *Invoker) {
		i.maxInputSize = n
	}
}
