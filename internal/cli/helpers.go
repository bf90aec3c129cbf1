package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/agrimind/internal/config"
	"github.com/aretw0/agrimind/internal/logging"
	"github.com/aretw0/agrimind/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the log section, letting
// non-empty flag values override it.
func NewLogger(cfg config.LogConfig, levelFlag, formatFlag string) (*slog.Logger, error) {
	level, format := cfg.Level, cfg.Format
	if levelFlag != "" {
		level = levelFlag
	}
	if formatFlag != "" {
		format = formatFlag
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl, format), nil
}

// ReadInput parses an action input given inline as JSON or as @path.
// "-" reads from stdin.
func ReadInput(arg string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	switch {
	case arg == "":
		return map[string]any{}, nil
	case arg == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		data = b
	default:
		data = []byte(arg)
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// PhotoDataURI reads an image file into a data URI.
func PhotoDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}
	return domain.Attachment{MIMEType: mimeType, Data: data}.DataURI(), nil
}

// ExitCodeError carries a process exit code out of a command.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string { return e.Err.Error() }
func (e *ExitCodeError) Unwrap() error { return e.Err }

// Exit codes of a failed invocation, by failure kind.
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitTransport  = 3
)

// ResultError converts a failed result into an ExitCodeError, or nil.
func ResultError(res domain.ActionResult) error {
	if res.OK() {
		return nil
	}
	code := ExitFailure
	switch res.Error.Kind {
	case domain.KindValidation:
		code = ExitValidation
	case domain.KindTransport, domain.KindSchemaMismatch, domain.KindEmptyResponse:
		code = ExitTransport
	}
	return &ExitCodeError{Code: code, Err: fmt.Errorf("%s: %s", res.Error.Kind, res.Error.Message)}
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	var exit *ExitCodeError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return ExitFailure
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
