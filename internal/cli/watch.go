package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"krx-sentinel/internal/audit"
	"krx-sentinel/internal/engine"
	apperrors "krx-sentinel/internal/errors"
	"krx-sentinel/internal/history"
	"krx-sentinel/internal/notify"
	"krx-sentinel/internal/stream"
)

// addWatchCommand registers the long-running monitor command.
func addWatchCommand(root *cobra.Command, app *App) {
	var name string

	cmd := &cobra.Command{
		Use:   "watch [ticker]",
		Short: "Monitor an instrument for alert conditions",
		Long: `Connect to the market data feed and monitor one instrument. Alert
rules for the instrument are taken from the configuration file. The
command runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config

			ticker := cfg.Watch.Ticker
			if len(args) > 0 {
				ticker = args[0]
			}
			if ticker == "" {
				return fmt.Errorf("%w: pass a ticker argument or set watch.ticker", apperrors.ErrNoTicker)
			}
			if name == "" {
				name = cfg.Watch.Name
			}

			return runWatch(cmd.Context(), app, ticker, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the instrument")

	root.AddCommand(cmd)
}

func runWatch(parent context.Context, app *App, ticker, name string) error {
	cfg := app.Config
	logger := app.Logger

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	memLog := history.NewLog(cfg.History.Capacity)
	sink := history.Sink(memLog)
	if app.Store != nil {
		sink = history.Tee(memLog, app.Store)
	}

	toaster := notify.NewTerminalToaster(os.Stdout, cfg.Toast.Bell, cfg.Toast.Color)

	auditURL := ""
	if cfg.Audit.Enabled {
		auditURL = cfg.Audit.URL
	}
	auditor := audit.NewClient(auditURL, cfg.AuditTimeout(), logger)

	eng := engine.New(toaster, sink, auditor, logger, engine.Config{
		ToastDuration: cfg.ToastDuration(),
	})

	monitor := stream.NewMonitor(eng, logger)
	monitor.SetRules(cfg.Rules())
	monitor.Watch(ticker, name)

	hub := stream.NewHub()
	hub.Register(monitor)
	hub.Start(ctx)
	defer hub.Stop()

	feedCfg := stream.FeedConfig{
		URL:               cfg.Feed.URL,
		ReconnectDelay:    time.Duration(cfg.Feed.ReconnectSeconds) * time.Second,
		MaxReconnectDelay: time.Duration(cfg.Feed.MaxReconnectSeconds) * time.Second,
	}
	feed := stream.NewFeed(feedCfg, hub, logger)

	logger.Info().Str("ticker", ticker).Str("feed", cfg.Feed.URL).Msg("Starting alert monitor")

	err := feed.Run(ctx)

	metrics := hub.Metrics()
	logger.Info().
		Int("alerts_fired", eng.FiredCount()).
		Int("unread", memLog.UnreadCount()).
		Uint64("updates", metrics.Received).
		Uint64("dropped", metrics.Dropped).
		Msg("Monitor stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
