package main

import (
	"fmt"
	"os"

	"krx-sentinel/internal/cli"
	"krx-sentinel/internal/config"
	"krx-sentinel/internal/logging"
)

func main() {
	configDir := os.Getenv("SENTINEL_CONFIG_DIR")

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
	})

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
