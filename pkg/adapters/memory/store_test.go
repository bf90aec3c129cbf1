package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/agrimind/pkg/adapters/memory"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunConversationStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	conv := domain.NewConversation("c1")
	conv.Append(domain.ChatMessage{Role: domain.RoleUser, Content: "Hi"})
	require.NoError(t, store.Save(ctx, conv))

	conv.Messages[0].Content = "changed"
	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Hi", loaded.Messages[0].Content)

	loaded.Append(domain.ChatMessage{Role: domain.RoleModel, Content: "Hello"})
	again, _ := store.Load(ctx, "c1")
	assert.Len(t, again.Messages, 1)
}
