package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/agrimind/pkg/ports"
)

// Fake is a scripted generator for tests and offline demos.
//
// Replies are taken, in order, from the script registered for the action,
// then from the shared script. When both are exhausted it synthesizes a
// reply that satisfies the requested schema, or a fixed sentence in text
// mode.
type Fake struct {
	mu       sync.Mutex
	scripts  map[string][]Reply
	shared   []Reply
	requests []ports.GenerateRequest
}

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// NewFake creates a Fake answering with the given texts in order.
func NewFake(texts ...string) *Fake {
	f := &Fake{scripts: make(map[string][]Reply)}
	for _, t := range texts {
		f.shared = append(f.shared, Reply{Text: t})
	}
	return f
}

// On queues replies for one action.
func (f *Fake) On(action string, replies ...Reply) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[action] = append(f.scripts[action], replies...)
	return f
}

// OnJSON queues a reply encoding v for one action.
func (f *Fake) OnJSON(action string, v any) *Fake {
	raw, err := json.Marshal(v)
	if err != nil {
		return f.On(action, Reply{Err: err})
	}
	return f.On(action, Reply{Text: string(raw)})
}

// Requests returns the requests received so far.
func (f *Fake) Requests() []ports.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.GenerateRequest(nil), f.requests...)
}

// Generate records req and returns the next scripted reply.
func (f *Fake) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply, ok := f.next(req.Action)
	f.mu.Unlock()

	if !ok {
		text, err := synthesize(req.Schema)
		if err != nil {
			return nil, err
		}
		reply = Reply{Text: text}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &ports.GenerateResponse{Text: reply.Text, Model: ProviderFake}, nil
}

func (f *Fake) next(action string) (Reply, bool) {
	if q := f.scripts[action]; len(q) > 0 {
		f.scripts[action] = q[1:]
		return q[0], true
	}
	if len(f.shared) > 0 {
		r := f.shared[0]
		f.shared = f.shared[1:]
		return r, true
	}
	return Reply{}, false
}

func synthesize(schema map[string]any) (string, error) {
	if schema == nil {
		return "This is a simulated reply. Configure a provider for real advice.", nil
	}
	raw, err := json.Marshal(Sample(schema))
	if err != nil {
		return "", fmt.Errorf("fake: encode sample: %w", err)
	}
	return string(raw), nil
}

// Sample builds a value satisfying a JSON Schema produced by schema.JSONSchema.
func Sample(schema map[string]any) any {
	if enum, ok := schema["enum"]; ok {
		switch e := enum.(type) {
		case []string:
			if len(e) > 0 {
				return e[0]
			}
		case []any:
			if len(e) > 0 {
				return e[0]
			}
		}
	}

	switch schema["type"] {
	case "object":
		out := map[string]any{}
		props, _ := schema["properties"].(map[string]any)
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if sub, ok := props[name].(map[string]any); ok {
				out[name] = Sample(sub)
			}
		}
		return out
	case "array":
		items, _ := schema["items"].(map[string]any)
		n := 1
		if m, ok := toInt(schema["minItems"]); ok && m > n {
			n = m
		}
		out := make([]any, n)
		for i := range out {
			out[i] = Sample(items)
		}
		return out
	case "integer", "number":
		if m, ok := toFloat(schema["minimum"]); ok {
			return m
		}
		if m, ok := toFloat(schema["maximum"]); ok && m < 0 {
			return m
		}
		return 0
	case "boolean":
		return false
	default:
		s := "sample"
		if m, ok := toInt(schema["minLength"]); ok {
			for len(s) < m {
				s += " sample"
			}
		}
		return s
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	return int(f), ok
}
