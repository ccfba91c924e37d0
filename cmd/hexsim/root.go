package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/logger"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the hexsim CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hexsim",
		Short: "hexsim - a tick-scheduled town simulation",
		Long: `hexsim runs a small world of characters on a hex map. Characters
act through tools that cost time; the clock dispatches their events and
everyone nearby perceives them.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.String("data-dir", "data", "world data directory")
	flags.String("player-id", "hero", "character the player controls")
	flags.Int64("seed", 0, "random seed (0 picks one from the clock)")
	flags.Bool("starvation", false, "track hunger from the start")
	flags.String("rating", "", "content rating; family ratings soften speech")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("journal.path", "", "SQLite journal file")
	flags.String("redis.url", "", "Redis URL for the narration feed and command queue")
	flags.String("session-id", "", "session id (generated when empty)")

	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewDemoCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewEnqueueCmd())

	return cmd
}

// loadConfig reads the config with cmd's flags layered on top. Logs go to
// stderr so they never mix with narration.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.SetupWriter(cfg, cmd.ErrOrStderr()), nil
}
