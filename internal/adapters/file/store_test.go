package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/agrimind/internal/adapters/file"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ConversationStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	conv := domain.NewConversation("farm-42")
	conv.Append(domain.ChatMessage{Role: domain.RoleUser, Content: "When do I plant corn?"})
	require.NoError(t, store.Save(ctx, conv))

	data, err := os.ReadFile(filepath.Join(dir, "farm-42.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content": "When do I plant corn?"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be cleaned up")
}

func TestFileStore_ListIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-a-123.json"), []byte("{}"), 0o644))
	require.NoError(t, store.Save(context.Background(), domain.NewConversation("a")))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"../escape", "a/b", "", ".hidden"} {
		assert.ErrorIs(t, store.Save(ctx, domain.NewConversation(id)), domain.ErrInvalidConversationID, id)
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvalidConversationID, id)
		assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrInvalidConversationID, id)
	}
}
