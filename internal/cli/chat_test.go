package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/agrimind/internal/presentation/tui"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/adapters/llm"
	"github.com/aretw0/agrimind/pkg/adapters/memory"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/invoker"
	"github.com/aretw0/agrimind/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChat(t *testing.T, gen *llm.Fake) (*ChatSession, *bytes.Buffer, *memory.Store) {
	t.Helper()
	reg, err := actions.NewRegistry(context.Background(), actions.Deps{})
	require.NoError(t, err)
	store := memory.NewStore()
	svc := chat.NewService(invoker.New(reg, gen), session.NewManager(store))
	var out bytes.Buffer
	return &ChatSession{Service: svc, Printer: &tui.Printer{Out: &out}}, &out, store
}

func TestChatSession_Conversation(t *testing.T) {
	s, out, store := newChat(t, llm.NewFake("Plant after the first rains.", "Use **drip irrigation**."))

	err := s.Run(context.Background(), strings.NewReader("When do I plant maize?\n\nHow do I water it?\n/quit\nignored\n"))
	require.NoError(t, err)

	assert.Equal(t, "you: AgriBot: Plant after the first rains.\nyou: you: AgriBot: Use **drip irrigation**.\nyou: ", out.String())

	require.NotEmpty(t, s.ConversationID)
	conv, err := store.Load(context.Background(), s.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 4)
}

func TestChatSession_ResumeAndForget(t *testing.T) {
	s, out, store := newChat(t, llm.NewFake("Hello farmer.", "Welcome back."))
	ctx := context.Background()
	_, err := s.Service.Send(ctx, "farm-3", "Hi")
	require.NoError(t, err)

	s.ConversationID = "farm-3"
	require.NoError(t, s.Run(ctx, strings.NewReader("/id\n/forget\n")))

	assert.Contains(t, out.String(), ">>> Resuming conversation 'farm-3' (2 messages).")
	assert.Contains(t, out.String(), ">>> Conversation 'farm-3'.")
	assert.Contains(t, out.String(), ">>> Started a new conversation.")
	assert.Empty(t, s.ConversationID)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestChatSession_ProviderFailureKeepsGoing(t *testing.T) {
	gen := llm.NewFake().On(actions.ChatAction,
		llm.Reply{Err: errors.New("503 service unavailable")},
		llm.Reply{Text: "Back online."},
	)
	s, out, _ := newChat(t, gen)

	require.NoError(t, s.Run(context.Background(), strings.NewReader("hello\nhello again\n")))

	assert.Contains(t, out.String(), ">>> AgriBot is unavailable (transport)")
	assert.Contains(t, out.String(), "AgriBot: Back online.")
}

func TestChatSession_Cancelled(t *testing.T) {
	s, _, _ := newChat(t, llm.NewFake())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()
	assert.ErrorIs(t, s.Run(ctx, r), context.Canceled)
}
