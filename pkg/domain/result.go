package domain

import "errors"

// Failure is the error side of an ActionResult.
type Failure struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// ActionResult is either a success carrying Output or a failure carrying Error.
// Exactly one of the two is set.
type ActionResult struct {
	Action string         `json:"action"`
	Output map[string]any `json:"output,omitempty"`
	Error  *Failure       `json:"error,omitempty"`
}

// Succeeded builds a success result.
func Succeeded(action string, output map[string]any) ActionResult {
	if output == nil {
		output = map[string]any{}
	}
	return ActionResult{Action: action, Output: output}
}

// Failed builds a failure result from an invocation error.
func Failed(action string, err error) ActionResult {
	f := &Failure{Kind: KindOf(err), Message: err.Error()}
	var ae *ActionError
	if errors.As(err, &ae) {
		f.Message = ae.Message
		f.Fields = ae.Fields
	}
	return ActionResult{Action: action, Error: f}
}

// ResultOf folds an (output, error) pair into a result.
func ResultOf(action string, output map[string]any, err error) ActionResult {
	if err != nil {
		return Failed(action, err)
	}
	return Succeeded(action, output)
}

// OK reports whether the result is a success.
func (r ActionResult) OK() bool { return r.Error == nil }
