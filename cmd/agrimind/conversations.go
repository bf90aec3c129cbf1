package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/aretw0/agrimind/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage stored AgriBot conversations",
	Long:    `List, inspect, and remove conversations in the configured store.`,
}

var conversationsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Chat.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing conversations: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No conversations found.")
			return nil
		}
		fmt.Fprintln(out, "Conversations:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Print a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		conv, err := app.Chat.History(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading conversation '%s': %w", args[0], err)
		}
		if asJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), conv)
		}
		return tui.NewPrinter(os.Stdout).Markdown(cli.ConversationMarkdown(conv))
	},
}

var conversationsRmCmd = &cobra.Command{
	Use:   "rm <conversation-id>...",
	Short: "Remove one or more conversations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, id := range args {
			if err := app.Chat.Forget(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("removing '%s': %w", id, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed conversation '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
	conversationsCmd.AddCommand(conversationsLsCmd, conversationsShowCmd, conversationsRmCmd)
	conversationsShowCmd.Flags().Bool("json", false, "Print the stored JSON")
}
