// Package stream provides market data transport and distribution: a
// fan-out hub, a WebSocket feed client, and the session monitor that
// binds incoming data to the alert engine.
package stream

import (
	"context"
	"sync"

	"krx-sentinel/internal/models"
)

// Consumer receives market data updates from the Hub. Consumers are
// invoked from the hub's broadcast goroutine, so within one consumer
// updates arrive in publish order.
type Consumer interface {
	OnTick(t models.Tick)
	OnFlow(s models.FlowSnapshot)
	OnPreviousClose(ticker string, close float64)
	OnSession(ticker, name string)
}

// HubConfig holds configuration for the Hub.
type HubConfig struct {
	// BufferSize is the size of the internal update channel buffer.
	BufferSize int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{BufferSize: 256}
}

type eventKind int

const (
	eventTick eventKind = iota
	eventFlow
	eventPrevClose
	eventSession
)

type event struct {
	kind   eventKind
	tick   models.Tick
	flow   models.FlowSnapshot
	ticker string
	name   string
	value  float64
}

// Hub distributes feed updates to registered consumers. Publishing is
// non-blocking: if the buffer is full the update is dropped and counted.
type Hub struct {
	config HubConfig

	mu      sync.Mutex
	started bool
	done    chan struct{}

	events chan event

	consumersMu sync.RWMutex
	consumers   []Consumer

	metricsMu sync.RWMutex
	received  uint64
	dropped   uint64
}

// NewHub creates a hub with default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a hub with custom configuration.
func NewHubWithConfig(config HubConfig) *Hub {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultHubConfig().BufferSize
	}
	return &Hub{
		config: config,
		done:   make(chan struct{}),
		events: make(chan event, config.BufferSize),
	}
}

// Register adds a consumer.
func (h *Hub) Register(c Consumer) {
	h.consumersMu.Lock()
	h.consumers = append(h.consumers, c)
	h.consumersMu.Unlock()
}

// Unregister removes a consumer.
func (h *Hub) Unregister(c Consumer) {
	h.consumersMu.Lock()
	defer h.consumersMu.Unlock()

	for i, existing := range h.consumers {
		if existing == c {
			h.consumers = append(h.consumers[:i], h.consumers[i+1:]...)
			break
		}
	}
}

// Start begins the broadcast loop. Calling Start twice is a no-op.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go h.broadcastLoop(ctx)
}

// Stop terminates the broadcast loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}
	h.started = false
	close(h.done)
}

func (h *Hub) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case ev := <-h.events:
			h.metricsMu.Lock()
			h.received++
			h.metricsMu.Unlock()
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev event) {
	h.consumersMu.RLock()
	consumers := make([]Consumer, len(h.consumers))
	copy(consumers, h.consumers)
	h.consumersMu.RUnlock()

	for _, c := range consumers {
		switch ev.kind {
		case eventTick:
			c.OnTick(ev.tick)
		case eventFlow:
			c.OnFlow(ev.flow)
		case eventPrevClose:
			c.OnPreviousClose(ev.ticker, ev.value)
		case eventSession:
			c.OnSession(ev.ticker, ev.name)
		}
	}
}

func (h *Hub) publish(ev event) {
	select {
	case h.events <- ev:
	default:
		h.metricsMu.Lock()
		h.dropped++
		h.metricsMu.Unlock()
	}
}

// PublishTick queues an intraday tick for distribution.
func (h *Hub) PublishTick(t models.Tick) {
	h.publish(event{kind: eventTick, tick: t})
}

// PublishFlow queues a trading-flow snapshot for distribution.
func (h *Hub) PublishFlow(s models.FlowSnapshot) {
	h.publish(event{kind: eventFlow, flow: s})
}

// PublishPreviousClose queues a previous-close reference value.
func (h *Hub) PublishPreviousClose(ticker string, close float64) {
	h.publish(event{kind: eventPrevClose, ticker: ticker, value: close})
}

// PublishSession queues a monitored-instrument change.
func (h *Hub) PublishSession(ticker, name string) {
	h.publish(event{kind: eventSession, ticker: ticker, name: name})
}

// HubMetrics contains hub counters.
type HubMetrics struct {
	Received uint64
	Dropped  uint64
}

// Metrics returns a snapshot of the hub counters.
func (h *Hub) Metrics() HubMetrics {
	h.metricsMu.RLock()
	defer h.metricsMu.RUnlock()
	return HubMetrics{Received: h.received, Dropped: h.dropped}
}
