package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	apperrors "krx-sentinel/internal/errors"
	"krx-sentinel/internal/logging"
	"krx-sentinel/internal/models"
)

// FeedConfig holds configuration for the WebSocket feed client.
type FeedConfig struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// DefaultFeedConfig returns the default feed configuration.
func DefaultFeedConfig(url string) FeedConfig {
	return FeedConfig{
		URL:               url,
		ReconnectDelay:    time.Second,
		MaxReconnectDelay: 30 * time.Second,
	}
}

// envelope is the wire format of a feed message. The backend sends one
// JSON object per message with a type discriminator.
type envelope struct {
	Type             string  `json:"type"`
	Ticker           string  `json:"ticker"`
	Name             string  `json:"name,omitempty"`
	Price            float64 `json:"price,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty"`
	Date             string  `json:"date,omitempty"`
	ForeignNet       float64 `json:"foreign_net,omitempty"`
	InstitutionalNet float64 `json:"institutional_net,omitempty"`
	Value            float64 `json:"value,omitempty"`
}

// Feed reads market data from the collection backend over WebSocket
// and publishes it into the hub. It reconnects with capped exponential
// backoff until the context is canceled.
type Feed struct {
	config FeedConfig
	hub    *Hub
	logger zerolog.Logger
}

// NewFeed creates a feed client publishing into hub.
func NewFeed(config FeedConfig, hub *Hub, logger zerolog.Logger) *Feed {
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = time.Second
	}
	if config.MaxReconnectDelay <= 0 {
		config.MaxReconnectDelay = 30 * time.Second
	}
	return &Feed{
		config: config,
		hub:    hub,
		logger: logging.WithComponent(logger, "feed"),
	}
}

// Run connects and reads until ctx is canceled. Connection errors
// trigger a reconnect after a backoff delay.
func (f *Feed) Run(ctx context.Context) error {
	delay := f.config.ReconnectDelay

	for {
		err := f.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn().Err(err).Dur("retry_in", delay).Msg("feed disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > f.config.MaxReconnectDelay {
			delay = f.config.MaxReconnectDelay
		}
	}
}

func (f *Feed) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.config.URL, nil)
	if err != nil {
		return apperrors.NewFeedError("dial", f.config.URL, err)
	}
	defer conn.Close()

	f.logger.Info().Str("url", f.config.URL).Msg("feed connected")

	// Unblock ReadMessage when the context is canceled.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return apperrors.NewFeedError("read", f.config.URL, err)
		}
		f.handleMessage(data)
	}
}

// handleMessage decodes one feed message and publishes it. Unknown
// message types are ignored so the feed can evolve without breaking
// older clients.
func (f *Feed) handleMessage(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		f.logger.Debug().Err(err).Msg("feed message decode failed")
		return
	}

	switch env.Type {
	case "tick":
		ts, _ := time.Parse(time.RFC3339, env.Timestamp)
		f.hub.PublishTick(models.Tick{
			Ticker:    env.Ticker,
			Price:     env.Price,
			Timestamp: ts,
		})
	case "flow":
		f.hub.PublishFlow(models.FlowSnapshot{
			Ticker:           env.Ticker,
			Date:             env.Date,
			ForeignNet:       env.ForeignNet,
			InstitutionalNet: env.InstitutionalNet,
		})
	case "prev_close":
		f.hub.PublishPreviousClose(env.Ticker, env.Value)
	case "session":
		f.hub.PublishSession(env.Ticker, env.Name)
	default:
		f.logger.Debug().Str("type", env.Type).Msg("ignoring unknown feed message type")
	}
}
