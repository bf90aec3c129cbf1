package invoker

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/agrimind/pkg/schema"
)

var (
	// DefaultMaxInputSize is 4KB per string field (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "AGRIMIND_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans one free-text value using the default size limit.
func SanitizeInput(input string) (string, error) {
	return SanitizeString(input, getMaxInputSize())
}

// SanitizeString cleans user input by enforcing a size limit,
// validating UTF-8, and stripping dangerous control characters.
func SanitizeString(input string, limit int) (string, error) {
	if len(input) > limit {
		// Rejected rather than truncated so the prompt never silently loses text.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Keep \n, \t and \r. Drop ESC, NULL, BEL and the rest, which would
	// otherwise poison logs and terminals.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

// sanitizeRecord returns a copy of input with every string value guided by
// s cleaned. Data URI fields are left alone; they are bounded by the schema.
// Failures are reported per field path.
func sanitizeRecord(s schema.Schema, input map[string]any, limit int) (map[string]any, error) {
	var errs []error
	out := sanitizeFields("", s, input, limit, &errs)
	if len(errs) > 0 {
		return nil, &schema.AggregateError{Errors: errs}
	}
	return out, nil
}

func sanitizeFields(prefix string, s schema.Schema, input map[string]any, limit int, errs *[]error) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		out[k] = sanitizeValue(path, s[k], v, limit, errs)
	}
	return out
}

func sanitizeValue(path string, t schema.Type, v any, limit int, errs *[]error) any {
	if _, ok := t.(*schema.DataURIType); ok {
		return v
	}

	switch val := v.(type) {
	case string:
		clean, err := SanitizeString(val, limit)
		if err != nil {
			*errs = append(*errs, &schema.ValidationError{Key: path, Reason: err.Error(), Value: val})
			return val
		}
		return clean
	case map[string]any:
		var nested schema.Schema
		if obj, ok := t.(*schema.ObjectType); ok {
			nested = obj.Fields()
		}
		return sanitizeFields(path, nested, val, limit, errs)
	case []any:
		var elem schema.Type
		if sl, ok := t.(*schema.SliceType); ok {
			elem = sl.Elem()
		}
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = sanitizeValue(fmt.Sprintf("%s[%d]", path, i), elem, item, limit, errs)
		}
		return items
	case []string:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = sanitizeValue(fmt.Sprintf("%s[%d]", path, i), nil, item, limit, errs)
		}
		return items
	default:
		return v
	}
}
