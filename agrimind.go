package agrimind

import (
	"context"
	_ "embed"
	"log/slog"
	"time"

	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/invoker"
	"github.com/aretw0/agrimind/pkg/ports"
)

// Version is the release version of AgriMind.
//
//go:embed VERSION
var Version string

// Option configures New.
type Option func(*options)

type options struct {
	deps    actions.Deps
	invoker []invoker.Option
}

// WithSMSGateway sets the gateway used by send-sms.
func WithSMSGateway(g ports.SMSGateway) Option {
	return func(o *options) { o.deps.SMS = g }
}

// WithPromptSource overrides built-in instruction templates.
func WithPromptSource(p ports.PromptSource) Option {
	return func(o *options) { o.deps.Prompts = p }
}

// WithLogger sets the invoker logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.invoker = append(o.invoker, invoker.WithLogger(logger)) }
}

// WithHooks adds invocation hooks.
func WithHooks(hooks domain.InvocationHooks) Option {
	return func(o *options) { o.invoker = append(o.invoker, invoker.WithHooks(hooks)) }
}

// WithTimeout bounds each invocation.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.invoker = append(o.invoker, invoker.WithTimeout(d)) }
}

// WithMaxConcurrent caps concurrent outbound calls.
func WithMaxConcurrent(n int) Option {
	return func(o *options) { o.invoker = append(o.invoker, invoker.WithMaxConcurrent(n)) }
}

// WithMaxInputSize sets the per-field byte limit for free text.
func WithMaxInputSize(n int) Option {
	return func(o *options) { o.invoker = append(o.invoker, invoker.WithMaxInputSize(n)) }
}

// New returns an invoker with every built-in action registered.
func New(ctx context.Context, gen ports.Generator, opts ...Option) (*invoker.Invoker, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	reg, err := actions.NewRegistry(ctx, o.deps)
	if err != nil {
		return nil, err
	}
	return invoker.New(reg, gen, o.invoker...), nil
}
