package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/agrimind/internal/cli"
	"github.com/aretw0/agrimind/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agrimind",
	Short: "AgriMind turns farming questions into validated AI answers",
	Long: `AgriMind exposes a fixed catalog of farming actions (yield prediction, crop
recommendation, pest detection, local advisories, weather, SMS and chat) backed by a
generative AI provider. Every input is validated before a call is made and every
reply is checked against the action's output schema.

Configuration is read from agrimind.yaml, .env and AGRIMIND_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && ctx.Signal() == nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if code := cli.ExitCode(err); code != 0 {
		os.Exit(code)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./agrimind.yaml or ~/.agrimind/agrimind.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadConfig reads the configuration and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	logger, err := cli.NewLogger(cfg.Log, level, format)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// loadApp wires the application. Commands that never reach a provider pass
// requireGenerator=false so they work without an API key.
func loadApp(cmd *cobra.Command, requireGenerator bool) (*cli.App, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cmd.Context(), cfg, logger, requireGenerator)
}
