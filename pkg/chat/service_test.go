package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/agrimind/internal/adapters/file"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/adapters/llm"
	"github.com/aretw0/agrimind/pkg/adapters/memory"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/invoker"
	"github.com/aretw0/agrimind/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, gen *llm.Fake, opts ...chat.Option) (*chat.Service, *memory.Store) {
	t.Helper()
	reg, err := actions.NewRegistry(context.Background(), actions.Deps{})
	require.NoError(t, err)
	store := memory.NewStore()
	return chat.NewService(invoker.New(reg, gen), session.NewManager(store), opts...), store
}

func TestSend_AppendsTurns(t *testing.T) {
	gen := llm.NewFake("Hello! How can I help?", "Try millet or cassava.")
	svc, store := newService(t, gen)
	ctx := context.Background()

	first, err := svc.Send(ctx, "farm-1", "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", first.Reply)

	second, err := svc.Send(ctx, "farm-1", "What crop suits sandy soil?")
	require.NoError(t, err)
	assert.Equal(t, "Try millet or cassava.", second.Reply)

	conv, err := store.Load(ctx, "farm-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "Hi"},
		{Role: domain.RoleModel, Content: "Hello! How can I help?"},
		{Role: domain.RoleUser, Content: "What crop suits sandy soil?"},
		{Role: domain.RoleModel, Content: "Try millet or cassava."},
	}, conv.Messages)

	prompt := gen.Requests()[1].Prompt
	assert.Contains(t, prompt, "- user: Hi\n- model: Hello! How can I help?\n- user: What crop suits sandy soil?")
}

func TestSend_NewConversationID(t *testing.T) {
	svc, _ := newService(t, llm.NewFake("Hi there"))

	turn, err := svc.Send(context.Background(), "", "Hello")
	require.NoError(t, err)
	assert.NotEmpty(t, turn.ConversationID)
	assert.Len(t, turn.Conversation.Messages, 2)

	ids, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{turn.ConversationID}, ids)
}

func TestSend_FailureKeepsHistory(t *testing.T) {
	gen := llm.NewFake().On(actions.ChatAction,
		llm.Reply{Text: "First answer"},
		llm.Reply{Err: errors.New("connection reset")},
	)
	svc, store := newService(t, gen)
	ctx := context.Background()

	_, err := svc.Send(ctx, "c", "Hi")
	require.NoError(t, err)

	_, err = svc.Send(ctx, "c", "Still there?")
	assert.ErrorIs(t, err, domain.ErrTransport)

	conv, err := store.Load(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)
}

func TestSend_EmptyMessage(t *testing.T) {
	gen := llm.NewFake()
	svc, _ := newService(t, gen)

	_, err := svc.Send(context.Background(), "c", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gen.Requests())
}

func TestSend_MaxHistory(t *testing.T) {
	gen := llm.NewFake("a1", "a2", "a3")
	svc, _ := newService(t, gen, chat.WithMaxHistory(2))
	ctx := context.Background()

	for _, m := range []string{"q1", "q2", "q3"} {
		_, err := svc.Send(ctx, "c", m)
		require.NoError(t, err)
	}

	prompt := gen.Requests()[2].Prompt
	assert.False(t, strings.Contains(prompt, "q1"))
	assert.Contains(t, prompt, "- user: q2\n- model: a2\n- user: q3")
}

func TestHistoryAndForget(t *testing.T) {
	svc, _ := newService(t, llm.NewFake("ok"))
	ctx := context.Background()

	_, err := svc.Send(ctx, "c", "Hi")
	require.NoError(t, err)

	conv, err := svc.History(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)

	require.NoError(t, svc.Forget(ctx, "c"))
	_, err = svc.History(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestInvalidConversationID(t *testing.T) {
	reg, err := actions.NewRegistry(context.Background(), actions.Deps{})
	require.NoError(t, err)
	gen := llm.NewFake("ok")
	svc := chat.NewService(invoker.New(reg, gen), session.NewManager(file.New(t.TempDir())))
	ctx := context.Background()

	_, err = svc.Send(ctx, "../etc", "Hi")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrInvalidConversationID)
	var ae *domain.ActionError
	require.ErrorAs(t, err, &ae)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "conversationId", ae.Fields[0].Field)
	assert.Empty(t, gen.Requests())

	_, err = svc.History(ctx, "bad id")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, svc.Forget(ctx, "bad id"), domain.ErrValidation)
}
