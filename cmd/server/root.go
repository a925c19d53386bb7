package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go-auth-api/internal/config"
	"go-auth-api/internal/logger"
)

// configFunc hands subcommands the configuration loaded by the root command.
type configFunc func() *config.Config

// NewRootCmd builds the command tree. load runs once, before any subcommand.
func NewRootCmd(load func() (*config.Config, error)) *cobra.Command {
	var cfg *config.Config
	current := func() *config.Config { return cfg }

	cmd := &cobra.Command{
		Use:          "go-auth-api",
		Short:        "User accounts, JWT sessions and an LLM proxy over HTTP",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded

			slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))
			return nil
		},
	}

	cmd.AddCommand(NewServeCmd(current))
	cmd.AddCommand(NewMigrateCmd(current))
	cmd.AddCommand(NewCreateSuperuserCmd(current))

	return cmd
}
