package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/aretw0/agrimind/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to AgriBot",
	Long: `Starts an interactive AgriBot conversation. History is kept in the configured
conversation store, so --conversation resumes an earlier chat.

Commands: /id prints the conversation id, /forget starts over, /quit leaves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("conversation")

		app, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		printer := tui.NewPrinter(os.Stdout)
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		session := &cli.ChatSession{Service: app.Chat, Printer: printer, ConversationID: id}
		err = session.Run(cmd.Context(), cmd.InOrStdin())
		if session.ConversationID != "" {
			cli.PrintSystemMessage(os.Stdout, "Conversation saved as '%s'.", session.ConversationID)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("conversation", "c", "", "Conversation id to resume or create")
}
