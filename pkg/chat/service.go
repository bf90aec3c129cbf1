// Package chat keeps AgriBot conversations on the server side.
//
// The chat action itself is stateless: every call carries the full history.
// Service loads that history from a store, invokes the action and appends
// the new turn, so clients only send the latest message.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/schema"
	"github.com/aretw0/agrimind/pkg/session"
	"github.com/google/uuid"
)

// ErrEmptyMessage is returned for blank messages.
var ErrEmptyMessage = errors.New("message must not be empty")

// Turn is the outcome of one Send.
type Turn struct {
	ConversationID string               `json:"conversationId"`
	Reply          string               `json:"response"`
	Conversation   *domain.Conversation `json:"conversation,omitempty"`
}

// Service runs chat turns against stored conversations.
type Service struct {
	invoker    actions.Invoker
	sessions   *session.Manager
	maxHistory int
}

// Option configures the Service.
type Option func(*Service)

// WithMaxHistory limits how many earlier messages are sent with each turn.
// Zero sends the whole history.
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		s.maxHistory = n
	}
}

// NewService creates a chat service.
func NewService(inv actions.Invoker, sessions *session.Manager, opts ...Option) *Service {
	s := &Service{invoker: inv, sessions: sessions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the underlying session manager.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// Send appends message to the conversation and returns AgriBot's reply.
// An empty id starts a new conversation. When the chat action fails the
// stored conversation is left untouched.
func (s *Service) Send(ctx context.Context, id, message string) (*Turn, error) {
	if strings.TrimSpace(message) == "" {
		return nil, domain.NewValidationError(actions.ChatAction, &schema.ValidationError{Key: "message", Reason: ErrEmptyMessage.Error()})
	}
	if id == "" {
		id = uuid.NewString()
	}

	var reply string
	conv, err := s.sessions.Update(ctx, id, func(ctx context.Context, conv *domain.Conversation) error {
		out, err := actions.Chat(ctx, s.invoker, actions.ChatInput{
			History: s.window(conv.Messages),
			Message: message,
		})
		if err != nil {
			return err
		}
		reply = out.Response
		conv.Append(
			domain.ChatMessage{Role: domain.RoleUser, Content: message},
			domain.ChatMessage{Role: domain.RoleModel, Content: reply},
		)
		return nil
	})
	if err != nil {
		return nil, invalidID(err)
	}
	return &Turn{ConversationID: id, Reply: reply, Conversation: conv}, nil
}

func (s *Service) window(msgs []domain.ChatMessage) []domain.ChatMessage {
	if s.maxHistory > 0 && len(msgs) > s.maxHistory {
		msgs = msgs[len(msgs)-s.maxHistory:]
	}
	return msgs
}

// History returns a stored conversation.
func (s *Service) History(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := s.sessions.Load(ctx, id)
	return conv, invalidID(err)
}

// Forget deletes a stored conversation.
func (s *Service) Forget(ctx context.Context, id string) error {
	return invalidID(s.sessions.Delete(ctx, id))
}

// invalidID reports a conversation ID rejected by the store as a validation
// failure of the conversationId field.
func invalidID(err error) error {
	if err == nil || !errors.Is(err, domain.ErrInvalidConversationID) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return &domain.ActionError{
		Kind:    domain.ErrValidation,
		Action:  actions.ChatAction,
		Message: err.Error(),
		Fields:  []domain.FieldError{{Field: "conversationId", Reason: domain.ErrInvalidConversationID.Error()}},
		Err:     err,
	}
}

// List returns the stored conversation IDs.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}
