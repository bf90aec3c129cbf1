package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
)

// Environment variables a gateway command receives.
const (
	EnvPhone   = "AGRIMIND_SMS_PHONE"
	EnvMessage = "AGRIMIND_SMS_MESSAGE"
)

// Command delivers messages by running a fixed, operator-configured
// program, e.g. a wrapper around gammu-smsd-inject or a provider CLI.
//
// The phone number and message are passed as environment variables, never
// as arguments, so message text cannot inject flags. A zero exit status
// means Sent. Stdout may carry a JSON receipt ({"status":..,"messageId":..})
// or a bare message id.
type Command struct {
	Path string
	Args []string
	Dir  string

	logger *slog.Logger
}

var _ ports.SMSGateway = (*Command)(nil)

// NewCommand creates a gateway running path with args. logger may be nil.
func NewCommand(path string, args []string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{Path: path, Args: args, logger: logger}
}

// Send runs the command once per message.
func (c *Command) Send(ctx context.Context, phone, message string) (domain.SMSReceipt, error) {
	if c.Path == "" {
		return domain.SMSReceipt{}, errors.New("sms command not configured")
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(cmd.Environ(), EnvPhone+"="+phone, EnvMessage+"="+message)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			id := newMessageID(time.Now())
			c.logger.Warn("sms command failed",
				"command", c.Path,
				"exit_code", exitErr.ExitCode(),
				"stderr", strings.TrimSpace(stderr.String()),
				"message_id", id)
			return domain.SMSReceipt{Status: domain.SMSFailed, MessageID: id}, nil
		}
		return domain.SMSReceipt{}, fmt.Errorf("run sms command %s: %w", c.Path, err)
	}

	receipt := parseReceipt(stdout.String())
	c.logger.Info("sms sent", "command", c.Path, "message_id", receipt.MessageID, "status", receipt.Status)
	return receipt, nil
}

func parseReceipt(output string) domain.SMSReceipt {
	trimmed := strings.TrimSpace(output)
	receipt := domain.SMSReceipt{Status: domain.SMSSent}

	if strings.HasPrefix(trimmed, "{") {
		var parsed domain.SMSReceipt
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			if parsed.Status == domain.SMSFailed {
				receipt.Status = domain.SMSFailed
			}
			receipt.MessageID = parsed.MessageID
		}
	} else if trimmed != "" && !strings.ContainsAny(trimmed, " \n\t") {
		receipt.MessageID = trimmed
	}

	if receipt.MessageID == "" {
		receipt.MessageID = newMessageID(time.Now())
	}
	return receipt
}
