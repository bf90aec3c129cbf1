// Package sms provides SMS gateways.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// Simulated is an SMS gateway that delivers nothing. Every well-formed
// message is reported as Sent; malformed numbers are reported as Failed.
type Simulated struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// Message is a message accepted by the simulated gateway.
type Message struct {
	ID     string
	Phone  string
	Body   string
	SentAt time.Time
}

var _ ports.SMSGateway = (*Simulated)(nil)

// NewSimulated creates a simulated gateway. logger may be nil.
func NewSimulated(logger *slog.Logger) *Simulated {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{logger: logger}
}

// Send records the message and returns a receipt.
func (s *Simulated) Send(ctx context.Context, phone, message string) (domain.SMSReceipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.SMSReceipt{}, err
	}

	id := newMessageID(time.Now())
	if !phonePattern.MatchString(phone) {
		s.logger.Warn("sms rejected", "phone", phone, "message_id", id)
		return domain.SMSReceipt{Status: domain.SMSFailed, MessageID: id}, nil
	}

	s.mu.Lock()
	s.sent = append(s.sent, Message{ID: id, Phone: phone, Body: message, SentAt: time.Now()})
	s.mu.Unlock()

	s.logger.Info("sms sent (simulated)", "message_id", id, "length", len(message))
	return domain.SMSReceipt{Status: domain.SMSSent, MessageID: id}, nil
}

// Sent returns the messages accepted so far.
func (s *Simulated) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// newMessageID builds sms_<unix nanos>_<base36 random>.
func newMessageID(now time.Time) string {
	return fmt.Sprintf("sms_%d_%s", now.UnixNano(), strconv.FormatUint(rand.Uint64()>>16, 36))
}
