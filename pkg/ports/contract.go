package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConversationStoreContract runs a suite of tests to verify that a
// ConversationStore implementation adheres to the interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	convID := "contract-test-conv-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(convID)
		conv.Append(
			domain.ChatMessage{Role: domain.RoleUser, Content: "Hi"},
			domain.ChatMessage{Role: domain.RoleModel, Content: "Hello! How can I help your farm today?"},
		)

		require.NoError(t, store.Save(ctx, conv), "Save should not return error")

		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, convID, loaded.ID)
		require.Len(t, loaded.Messages, 2)
		assert.Equal(t, domain.RoleUser, loaded.Messages[0].Role)
		assert.Equal(t, "Hi", loaded.Messages[0].Content)
		assert.Equal(t, domain.RoleModel, loaded.Messages[1].Role)
		assert.False(t, loaded.UpdatedAt.IsZero())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+convID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		conv := domain.NewConversation(convID)
		conv.Append(domain.ChatMessage{Role: domain.RoleUser, Content: "only"})
		require.NoError(t, store.Save(ctx, conv))

		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err)
		require.Len(t, loaded.Messages, 1)
		assert.Equal(t, "only", loaded.Messages[0].Content)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewConversation(convID)))

		require.NoError(t, store.Delete(ctx, convID), "Delete should not return error")

		_, err := store.Load(ctx, convID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")

		assert.NoError(t, store.Delete(ctx, convID), "Delete of unknown ID should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := convID + "-1"
		id2 := convID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewConversation(id1)))
		require.NoError(t, store.Save(ctx, domain.NewConversation(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
