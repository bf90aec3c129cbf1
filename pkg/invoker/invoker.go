package invoker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/aretw0/agrimind/pkg/registry"
	"github.com/aretw0/agrimind/pkg/schema"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Invoker executes ActionSpecs against input records.
// Each invocation is independent and performs at most one outbound call.
type Invoker struct {
	registry  *registry.Registry
	generator ports.Generator

	logger       *slog.Logger
	hooks        domain.InvocationHooks
	timeout      time.Duration
	slots        *semaphore.Weighted
	maxInputSize int
}

var _ ports.ActionRunner = (*Invoker)(nil)

// New creates an Invoker resolving names against reg and delegating
// generative calls to gen. gen may be nil when every action is Direct.
func New(reg *registry.Registry, gen ports.Generator, opts ...Option) *Invoker {
	i := &Invoker{
		registry:  reg,
		generator: gen,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Registry returns the registry the invoker resolves names against.
func (i *Invoker) Registry() *registry.Registry { return i.registry }

// Actions returns the registered actions sorted by name.
func (i *Invoker) Actions() []*domain.ActionSpec {
	if i.registry == nil {
		return nil
	}
	return i.registry.List()
}

// Run resolves name and invokes it, folding the outcome into a result.
func (i *Invoker) Run(ctx context.Context, name string, input map[string]any) domain.ActionResult {
	if i.registry == nil {
		return domain.Failed(name, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name))
	}
	spec, err := i.registry.Lookup(name)
	if err != nil {
		return domain.Failed(name, err)
	}
	out, err := i.Invoke(ctx, spec, input)
	return domain.ResultOf(name, out, err)
}

// InvokeByName resolves name and invokes it.
func (i *Invoker) InvokeByName(ctx context.Context, name string, input map[string]any) (map[string]any, error) {
	if i.registry == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name)
	}
	spec, err := i.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return i.Invoke(ctx, spec, input)
}

// Render sanitises and validates input and renders the instruction without
// calling out. Errors are *domain.ActionError values.
func (i *Invoker) Render(spec *domain.ActionSpec, input map[string]any) (string, error) {
	clean, err := i.prepare(spec, input)
	if err != nil {
		return "", err
	}
	return i.render(spec, clean)
}

// Invoke executes one action against one input record.
//
// Input is sanitised and validated before anything else; a violation fails
// with domain.ErrValidation and no outbound call is made. The instruction is
// then rendered and sent once, to spec.Direct when set or to the generator
// otherwise. The reply must decode into a record matching spec.Output, which
// is returned unchanged.
func (i *Invoker) Invoke(ctx context.Context, spec *domain.ActionSpec, input map[string]any) (out map[string]any, err error) {
	event := &domain.InvocationEvent{
		ID:        uuid.NewString(),
		Action:    spec.Name,
		Timestamp: time.Now(),
	}
	if i.hooks.OnInvoke != nil {
		i.hooks.OnInvoke(ctx, event)
	}
	logger := i.logger.With("action", spec.Name, "invocation_id", event.ID)
	logger.Debug("invoking action")

	defer func() {
		event.Duration = time.Since(event.Timestamp)
		event.Err = err
		event.Outcome = domain.OutcomeOK
		if err != nil {
			event.Outcome = domain.KindOf(err)
			logger.Warn("action failed", "kind", event.Outcome, "duration", event.Duration, "err", err)
		} else {
			logger.Debug("action succeeded", "duration", event.Duration)
		}
		if i.hooks.OnResult != nil {
			i.hooks.OnResult(ctx, event)
		}
	}()

	clean, err := i.prepare(spec, input)
	if err != nil {
		return nil, err
	}

	var attachments []domain.Attachment
	if spec.Attachment != "" {
		if uri, ok := clean[spec.Attachment].(string); ok {
			att, err := domain.ParseDataURI(uri)
			if err != nil {
				return nil, domain.NewValidationError(spec.Name, &schema.ValidationError{Key: spec.Attachment, Reason: err.Error()})
			}
			attachments = append(attachments, att)
		}
	}

	instruction, err := i.render(spec, clean)
	if err != nil {
		return nil, err
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	if i.slots != nil {
		if err := i.slots.Acquire(ctx, 1); err != nil {
			return nil, domain.NewActionError(domain.ErrTransport, spec.Name, fmt.Errorf("waiting for a free slot: %w", err))
		}
		defer i.slots.Release(1)
	}

	var record map[string]any
	if spec.Direct != nil {
		record, err = i.callDirect(ctx, spec, clean, instruction)
	} else {
		record, err = i.callGenerator(ctx, spec, instruction, attachments, logger)
	}
	if err != nil {
		return nil, err
	}

	if err := validateOutput(spec.Name, spec.Output, record); err != nil {
		return nil, domain.NewActionError(domain.ErrSchemaMismatch, spec.Name, err)
	}
	return record, nil
}

func (i *Invoker) prepare(spec *domain.ActionSpec, input map[string]any) (map[string]any, error) {
	if input == nil {
		input = map[string]any{}
	}
	limit := i.maxInputSize
	if limit <= 0 {
		limit = getMaxInputSize()
	}
	clean, err := sanitizeRecord(spec.Input, input, limit)
	if err != nil {
		return nil, domain.NewValidationError(spec.Name, err)
	}
	if err := schema.Validate(spec.Input, clean); err != nil {
		return nil, domain.NewValidationError(spec.Name, err)
	}
	return clean, nil
}

func (i *Invoker) render(spec *domain.ActionSpec, clean map[string]any) (string, error) {
	instruction, err := spec.Template(clean)
	if err != nil {
		return "", domain.NewActionError(domain.ErrInternal, spec.Name, fmt.Errorf("render instruction: %w", err))
	}
	if strings.TrimSpace(instruction) == "" {
		return "", domain.NewActionError(domain.ErrInternal, spec.Name, errors.New("rendered instruction is empty"))
	}
	return instruction, nil
}

func (i *Invoker) callDirect(ctx context.Context, spec *domain.ActionSpec, clean map[string]any, instruction string) (map[string]any, error) {
	record, err := spec.Direct(ctx, clean, instruction)
	if err != nil {
		return nil, domain.NewActionError(domain.ErrTransport, spec.Name, err)
	}
	if len(record) == 0 {
		return nil, domain.NewActionError(domain.ErrEmptyResponse, spec.Name, nil)
	}
	record, err = normalize(record)
	if err != nil {
		return nil, domain.NewActionError(domain.ErrSchemaMismatch, spec.Name, err)
	}
	return record, nil
}

func (i *Invoker) callGenerator(ctx context.Context, spec *domain.ActionSpec, instruction string, attachments []domain.Attachment, logger *slog.Logger) (map[string]any, error) {
	if i.generator == nil {
		return nil, domain.NewActionError(domain.ErrInternal, spec.Name, errors.New("no generator configured"))
	}

	req := ports.GenerateRequest{
		Action:      spec.Name,
		Prompt:      instruction,
		Attachments: attachments,
	}
	if spec.TextField == "" {
		req.Schema = spec.Output.JSONSchema()
	}

	resp, err := i.generator.Generate(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, domain.NewActionError(domain.ErrTransport, spec.Name, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, domain.NewActionError(domain.ErrEmptyResponse, spec.Name, errors.New("service returned no payload"))
	}
	logger.Debug("reply received", "model", resp.Model, "bytes", len(resp.Text))

	if spec.TextField != "" {
		return map[string]any{spec.TextField: strings.TrimSpace(resp.Text)}, nil
	}

	record, err := decodeReply(resp.Text)
	if err != nil {
		return nil, domain.NewActionError(domain.ErrSchemaMismatch, spec.Name, err)
	}
	return record, nil
}
