package ports

import (
	"context"

	"github.com/aretw0/agrimind/pkg/domain"
)

// ConversationStore defines the interface for persisting chat history.
type ConversationStore interface {
	// Save persists the conversation under its ID.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Load retrieves a conversation.
	// Returns domain.ErrConversationNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Conversation, error)

	// Delete removes a conversation. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored conversations.
	List(ctx context.Context) ([]string, error)
}
