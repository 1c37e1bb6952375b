// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "krx-sentinel", "logs", "sentinel.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithTicker adds a ticker to the logger context.
func WithTicker(logger zerolog.Logger, ticker string) zerolog.Logger {
	return logger.With().Str("ticker", ticker).Logger()
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// LogAlert logs a dispatched alert.
func LogAlert(logger zerolog.Logger, ruleID int64, ticker, alertType, message string) {
	logger.Info().
		Str("event", "alert").
		Int64("rule_id", ruleID).
		Str("ticker", ticker).
		Str("alert_type", alertType).
		Str("message", message).
		Msg("Alert dispatched")
}
