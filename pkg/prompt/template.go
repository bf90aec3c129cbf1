// Package prompt renders action instructions from Go text/template bodies.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/agrimind/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parse compiles a template body. Referencing a key absent from the input
// is an execution error rather than "<no value>".
func Parse(name, body string) (*template.Template, error) {
	t, err := template.New(name).
		Funcs(FuncMap()).
		Option("missingkey=error").
		Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

// Must is like Parse but panics on error. Intended for built-in templates.
func Must(name, body string) *template.Template {
	t, err := Parse(name, body)
	if err != nil {
		panic(err)
	}
	return t
}

// Func adapts a compiled template to a domain.TemplateFunc.
func Func(t *template.Template) domain.TemplateFunc {
	return func(input map[string]any) (string, error) {
		var buf bytes.Buffer
		if err := t.Execute(&buf, input); err != nil {
			return "", fmt.Errorf("execute template %s: %w", t.Name(), err)
		}
		return strings.TrimSpace(buf.String()), nil
	}
}

// Compile parses body and returns it as a domain.TemplateFunc.
func Compile(name, body string) (domain.TemplateFunc, error) {
	t, err := Parse(name, body)
	if err != nil {
		return nil, err
	}
	return Func(t), nil
}

// FuncMap returns the functions available to instruction templates.
func FuncMap() template.FuncMap {
	title := cases.Title(language.Und)
	return template.FuncMap{
		"json":  toJSON,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": title.String,
		"trim":  strings.TrimSpace,
		"default": func(def, v any) any {
			if v == nil || v == "" {
				return def
			}
			return v
		},
	}
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
