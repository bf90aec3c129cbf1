package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/agrimind/internal/config"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"location":"Nakuru"}`), 0o644))

	tests := []struct {
		name  string
		arg   string
		stdin string
		want  map[string]any
		err   bool
	}{
		{"empty", "", "", map[string]any{}, false},
		{"inline", `{"topic":"Irrigation","language":"Yoruba"}`, "", map[string]any{"topic": "Irrigation", "language": "Yoruba"}, false},
		{"file", "@" + path, "", map[string]any{"location": "Nakuru"}, false},
		{"stdin", "-", `{"message":"hi"}`, map[string]any{"message": "hi"}, false},
		{"null", "null", "", map[string]any{}, false},
		{"array", `["a"]`, "", nil, true},
		{"missing file", "@" + filepath.Join(dir, "nope.json"), "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadInput(tt.arg, strings.NewReader(tt.stdin))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhotoDataURI(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	named := filepath.Join(dir, "leaf.png")
	require.NoError(t, os.WriteFile(named, png, 0o644))
	uri, err := PhotoDataURI(named)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), uri)

	sniffed := filepath.Join(dir, "leaf")
	require.NoError(t, os.WriteFile(sniffed, png, 0o644))
	uri, err = PhotoDataURI(sniffed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), uri)

	att, err := domain.ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, png, att.Data)
}

func TestResultErrorAndExitCode(t *testing.T) {
	ok := domain.Succeeded("chat", map[string]any{"response": "hi"})
	assert.NoError(t, ResultError(ok))

	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrValidation, ExitValidation},
		{domain.ErrTransport, ExitTransport},
		{domain.ErrEmptyResponse, ExitTransport},
		{domain.ErrActionNotFound, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			err := ResultError(domain.Failed("weather-forecast", tt.err))
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
			assert.Equal(t, tt.code, ExitCode(fmt.Errorf("invoke: %w", err)))
		})
	}

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 130, ExitCode(context.Canceled))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func TestNewLogger_FlagsOverride(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "info", Format: "text"}, "", "")
	require.NoError(t, err)

	_, err = NewLogger(config.LogConfig{Level: "info", Format: "text"}, "verbose", "")
	assert.Error(t, err)

	logger, err := NewLogger(config.LogConfig{Level: "error", Format: "text"}, "debug", "json")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestSignalContext_CancelledElsewhere(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
