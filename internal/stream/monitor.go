package stream

import (
	"sync"

	"github.com/rs/zerolog"

	"krx-sentinel/internal/logging"
	"krx-sentinel/internal/models"
)

// Target is the engine-side surface the monitor drives.
type Target interface {
	Reset(ticker, tickerName string)
	SetRules(rules []models.AlertRule)
	SetPreviousClose(close float64)
	OnTick(t models.Tick)
	OnFlow(s models.FlowSnapshot)
}

// Monitor is the session controller. It tracks the monitored
// instrument, filters hub traffic down to it, and resets the target
// engine whenever the instrument changes, before forwarding any data
// for the new one.
type Monitor struct {
	mu     sync.Mutex
	target Target
	logger zerolog.Logger

	ticker string
	name   string
	rules  []models.AlertRule
}

// NewMonitor creates a monitor driving target.
func NewMonitor(target Target, logger zerolog.Logger) *Monitor {
	return &Monitor{
		target: target,
		logger: logging.WithComponent(logger, "monitor"),
	}
}

// SetRules stores the full rule list and pushes the subset for the
// monitored instrument to the target.
func (m *Monitor) SetRules(rules []models.AlertRule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = make([]models.AlertRule, len(rules))
	copy(m.rules, rules)

	if m.ticker != "" {
		m.target.SetRules(m.rulesFor(m.ticker))
	}
}

// Watch switches the monitored instrument. Switching to the instrument
// already being watched is a no-op; a redundant pass must not clear
// session state. A real change resets the engine synchronously before
// any data for the new instrument can be observed.
func (m *Monitor) Watch(ticker, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ticker == "" || ticker == m.ticker {
		return
	}

	m.ticker = ticker
	m.name = name
	m.target.Reset(ticker, name)
	m.target.SetRules(m.rulesFor(ticker))

	m.logger.Info().Str("ticker", ticker).Str("name", name).Msg("watching instrument")
}

// Ticker returns the monitored instrument.
func (m *Monitor) Ticker() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticker
}

// OnTick implements Consumer.
func (m *Monitor) OnTick(t models.Tick) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Ticker != m.ticker {
		return
	}
	m.target.OnTick(t)
}

// OnFlow implements Consumer.
func (m *Monitor) OnFlow(s models.FlowSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Ticker != m.ticker {
		return
	}
	m.target.OnFlow(s)
}

// OnPreviousClose implements Consumer.
func (m *Monitor) OnPreviousClose(ticker string, close float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ticker != m.ticker {
		return
	}
	m.target.SetPreviousClose(close)
}

// OnSession implements Consumer. The feed announces instrument changes
// when the dashboard switches to another stock.
func (m *Monitor) OnSession(ticker, name string) {
	m.Watch(ticker, name)
}

// rulesFor returns the configured rules for one ticker. Caller holds
// the lock.
func (m *Monitor) rulesFor(ticker string) []models.AlertRule {
	var out []models.AlertRule
	for _, r := range m.rules {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out
}
