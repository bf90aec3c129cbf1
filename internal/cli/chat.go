package cli

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/aretw0/agrimind/internal/presentation/tui"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/domain"
)

// Commands understood by the interactive chat.
const (
	cmdQuit   = "/quit"
	cmdForget = "/forget"
	cmdID     = "/id"
)

// ChatSession is an interactive AgriBot conversation on a terminal.
type ChatSession struct {
	Service        *chat.Service
	Printer        *tui.Printer
	ConversationID string
}

// Run reads messages from in until EOF, /quit or ctx is cancelled.
func (s *ChatSession) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, in)
	out := s.Printer.Out

	if s.ConversationID != "" {
		if conv, err := s.Service.History(ctx, s.ConversationID); err == nil {
			PrintSystemMessage(out, "Resuming conversation '%s' (%d messages).", conv.ID, len(conv.Messages))
		}
	}

	for {
		s.Printer.Speaker("you", "12")
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case cmdQuit, "exit", "quit":
			return nil
		case cmdID:
			PrintSystemMessage(out, "Conversation '%s'.", s.ConversationID)
			continue
		case cmdForget:
			if s.ConversationID != "" {
				if err := s.Service.Forget(ctx, s.ConversationID); err != nil {
					PrintSystemMessage(out, "Could not forget: %s", domain.Failed("", err).Error.Message)
					continue
				}
			}
			s.ConversationID = ""
			PrintSystemMessage(out, "Started a new conversation.")
			continue
		}

		turn, err := s.Service.Send(ctx, s.ConversationID, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failure := domain.Failed(actions.ChatAction, err).Error
			PrintSystemMessage(out, "AgriBot is unavailable (%s): %s", failure.Kind, failure.Message)
			continue
		}
		s.ConversationID = turn.ConversationID

		s.Printer.Speaker("AgriBot", "10")
		if err := s.Printer.Markdown(turn.Reply); err != nil {
			return err
		}
	}
}

// readLines feeds lines from r into a channel so a blocked read never
// holds up cancellation.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
