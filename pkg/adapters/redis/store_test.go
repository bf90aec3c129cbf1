package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/agrimind/pkg/adapters/redis"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunConversationStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Now()
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Second),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	conv := domain.NewConversation("conv-ttl")
	conv.Append(domain.ChatMessage{Role: domain.RoleUser, Content: "Hi"})
	require.NoError(t, store.Save(ctx, conv))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "conv-ttl")

	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "conv-ttl")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	now = now.Add(2 * time.Second)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewConversation("my-conv")))

	assert.True(t, mr.Exists("custom:app:my-conv"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-conv"}, ids)
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_LoadCorrupt(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"bad", "{not json"))

	_, err := redis.NewFromClient(client).Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConversationNotFound)
}
