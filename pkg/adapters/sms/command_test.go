package sms

import (
	"context"
	"runtime"
	"testing"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, script string) *Command {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	return NewCommand("sh", []string{"-c", script}, nil)
}

func TestCommand_PassesArgumentsViaEnv(t *testing.T) {
	gw := shell(t, `printf '{"status":"Sent","messageId":"%s"}' "$AGRIMIND_SMS_PHONE"`)

	receipt, err := gw.Send(context.Background(), "+15551234567", "Rain expected tomorrow")
	require.NoError(t, err)
	assert.Equal(t, domain.SMSSent, receipt.Status)
	assert.Equal(t, "+15551234567", receipt.MessageID)
}

func TestCommand_MessageIsNotInterpreted(t *testing.T) {
	gw := shell(t, `test "$AGRIMIND_SMS_MESSAGE" = '$(rm -rf /); --force' && echo ok-123`)

	receipt, err := gw.Send(context.Background(), "+15551234567", "$(rm -rf /); --force")
	require.NoError(t, err)
	assert.Equal(t, domain.SMSSent, receipt.Status)
	assert.Equal(t, "ok-123", receipt.MessageID)
}

func TestCommand_NonZeroExitIsFailedReceipt(t *testing.T) {
	gw := shell(t, `echo "modem offline" >&2; exit 3`)

	receipt, err := gw.Send(context.Background(), "+15551234567", "Harvest starts Monday")
	require.NoError(t, err)
	assert.Equal(t, domain.SMSFailed, receipt.Status)
	assert.Regexp(t, `^sms_\d+_[0-9a-z]+$`, receipt.MessageID)
}

func TestCommand_MissingBinary(t *testing.T) {
	gw := NewCommand("/nonexistent/agrimind-sms", nil, nil)

	_, err := gw.Send(context.Background(), "+15551234567", "Harvest starts Monday")
	assert.Error(t, err)
}

func TestCommand_NotConfigured(t *testing.T) {
	_, err := NewCommand("", nil, nil).Send(context.Background(), "+15551234567", "hello")
	assert.Error(t, err)
}

func TestParseReceipt(t *testing.T) {
	tests := []struct {
		name   string
		output string
		status string
		id     string
	}{
		{"json", `{"status":"Sent","messageId":"abc"}`, domain.SMSSent, "abc"},
		{"json failed", `{"status":"Failed","messageId":"abc"}`, domain.SMSFailed, "abc"},
		{"bare id", "SM123\n", domain.SMSSent, "SM123"},
		{"chatter", "message queued for delivery", domain.SMSSent, ""},
		{"empty", "", domain.SMSSent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseReceipt(tt.output)
			assert.Equal(t, tt.status, got.Status)
			if tt.id != "" {
				assert.Equal(t, tt.id, got.MessageID)
			} else {
				assert.NotEmpty(t, got.MessageID)
			}
		})
	}
}
