// Package cli provides the command-line interface for the application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"krx-sentinel/internal/config"
	"krx-sentinel/internal/logging"
	"krx-sentinel/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.HistoryStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Durable alert history. The watcher still works without it, only
	// the in-memory history survives.
	historyStore, err := store.NewSQLiteStore(cfg.History.DBPath, cfg.History.Capacity, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open alert history store, history will not persist")
	} else {
		app.Store = historyStore
		logger.Debug().Str("path", cfg.History.DBPath).Msg("Alert history store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "KRX Sentinel - real-time stock alert monitor",
		Long: `KRX Sentinel watches a Korean-market instrument for user-defined
alert conditions: target prices, percentage moves from the previous
close, and aligned foreign/institutional trading flows.

Qualifying hits produce a terminal notification, a durable history
entry, and a best-effort audit record. Each rule notifies at most once
per monitoring session.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/krx-sentinel)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addWatchCommand(rootCmd, app)
	addAlertCommands(rootCmd, app)

	return rootCmd
}
