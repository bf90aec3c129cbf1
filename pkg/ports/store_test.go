package ports_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
)

// MockStore is an in-memory implementation of ConversationStore for testing purposes.
type MockStore struct {
	mu   sync.Mutex
	data map[string]domain.Conversation
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Conversation),
	}
}

func (m *MockStore) Save(ctx context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Copy to simulate serialization
	c := *conv
	c.Messages = slices.Clone(conv.Messages)
	m.data[conv.ID] = c
	return nil
}

func (m *MockStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	c.Messages = slices.Clone(c.Messages)
	return &c, nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.data)), nil
}

func TestConversationStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, NewMockStore())
}
