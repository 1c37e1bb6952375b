// Package engine implements the real-time alert detection engine: it
// evaluates user-defined rules against incoming intraday ticks and
// trading-flow snapshots and dispatches de-duplicated notifications.
package engine

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"krx-sentinel/internal/audit"
	"krx-sentinel/internal/history"
	"krx-sentinel/internal/logging"
	"krx-sentinel/internal/models"
	"krx-sentinel/internal/notify"
)

// DefaultToastDuration is how long a toast stays visible unless
// configured otherwise.
const DefaultToastDuration = 5 * time.Second

// FiredKey identifies a rule instance that already produced a
// notification in the current session.
type FiredKey struct {
	RuleID int64
	Type   models.AlertType
}

// Auditor records dispatched alerts without blocking the caller.
type Auditor interface {
	RecordAsync(r audit.Record)
}

// Config holds engine tuning knobs.
type Config struct {
	// ToastDuration is the visible duration attached to each toast.
	ToastDuration time.Duration
}

// Engine watches one instrument per session. All mutable state (the
// fired set, the flow date guard, cached inputs) belongs to a single
// engine instance and is cleared by Reset when the ticker changes.
type Engine struct {
	mu sync.Mutex

	ticker     string
	tickerName string
	rules      []models.AlertRule

	fired        map[FiredKey]struct{}
	lastFlowDate string

	lastTick  *models.Tick
	prevClose *float64
	lastFlow  *models.FlowSnapshot

	toaster       notify.Toaster
	history       history.Sink
	auditor       Auditor
	logger        zerolog.Logger
	toastDuration time.Duration
}

// New creates an engine. Any of toaster, sink and auditor may be nil,
// in which case the corresponding effect is skipped.
func New(toaster notify.Toaster, sink history.Sink, auditor Auditor, logger zerolog.Logger, cfg Config) *Engine {
	duration := cfg.ToastDuration
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Engine{
		fired:         make(map[FiredKey]struct{}),
		toaster:       toaster,
		history:       sink,
		auditor:       auditor,
		logger:        logging.WithComponent(logger, "engine"),
		toastDuration: duration,
	}
}

// Reset starts a fresh session for the given instrument. The fired set
// is replaced with an empty one, the flow date guard and all cached
// inputs are cleared. Must run before any data for the new ticker is
// evaluated so state never leaks across instruments.
func (e *Engine) Reset(ticker, tickerName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ticker = ticker
	e.tickerName = tickerName
	e.fired = make(map[FiredKey]struct{})
	e.lastFlowDate = ""
	e.lastTick = nil
	e.prevClose = nil
	e.lastFlow = nil

	e.logger.Debug().Str("ticker", ticker).Msg("session reset")
}

// Ticker returns the instrument of the current session.
func (e *Engine) Ticker() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticker
}

// SetRules replaces the rule list and re-evaluates price-based rules
// against the cached tick. Flow rules are not re-run for a snapshot
// date that was already processed.
func (e *Engine) SetRules(rules []models.AlertRule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rules = make([]models.AlertRule, len(rules))
	copy(e.rules, rules)

	if e.lastTick != nil {
		e.evalTick(*e.lastTick)
	}
}

// SetPreviousClose supplies the reference close used by
// percentage-change rules and re-evaluates against the cached tick.
func (e *Engine) SetPreviousClose(close float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prevClose = &close

	if e.lastTick != nil {
		e.evalTick(*e.lastTick)
	}
}

// OnTick evaluates target-price and percentage-change rules against a
// new intraday tick. Ticks for other instruments are ignored.
func (e *Engine) OnTick(t models.Tick) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ticker != "" && t.Ticker != "" && t.Ticker != e.ticker {
		return
	}

	e.lastTick = &t
	e.evalTick(t)
}

// OnFlow evaluates trading-signal rules against a trading-flow
// snapshot. Each distinct snapshot date is evaluated at most once,
// regardless of how many times it is presented.
func (e *Engine) OnFlow(s models.FlowSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ticker != "" && s.Ticker != "" && s.Ticker != e.ticker {
		return
	}

	e.lastFlow = &s
	e.evalFlow(s)
}

// HasFired reports whether a rule instance already notified this session.
func (e *Engine) HasFired(ruleID int64, alertType models.AlertType) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.fired[FiredKey{RuleID: ruleID, Type: alertType}]
	return ok
}

// FiredCount returns how many rule instances have fired this session.
func (e *Engine) FiredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fired)
}

// evalTick runs the tick-triggered evaluators. Caller holds the lock.
func (e *Engine) evalTick(t models.Tick) {
	price := t.Price

	for _, r := range e.rules {
		if !r.Active {
			continue
		}

		switch r.Type {
		case models.AlertBuy, models.AlertSell:
			// Only direction decides the comparison; the alert type
			// affects labeling and toast category.
			var hit bool
			if r.Direction == models.DirectionBelow {
				hit = price <= r.TargetPrice
			} else {
				hit = price >= r.TargetPrice
			}
			if hit {
				e.dispatch(r, targetCategory(r.Type), targetMessage(e.displayName(), r, price))
			}

		case models.AlertPriceChange:
			if e.prevClose == nil || *e.prevClose == 0 {
				continue
			}
			changePct := (price - *e.prevClose) / *e.prevClose * 100
			threshold := r.TargetPrice

			var hit bool
			switch r.Direction {
			case models.DirectionAbove:
				hit = changePct >= threshold
			case models.DirectionBelow:
				hit = changePct <= -threshold
			case models.DirectionBoth:
				hit = math.Abs(changePct) >= threshold
			}
			if hit {
				e.dispatch(r, changeCategory(changePct), changeMessage(e.displayName(), changePct, threshold))
			}
		}
	}
}

// evalFlow runs the trading-signal evaluator. Caller holds the lock.
func (e *Engine) evalFlow(s models.FlowSnapshot) {
	// The date guard is independent of the fired tracker: an unchanged
	// snapshot never re-runs rule evaluation, fired or not.
	if s.Date == e.lastFlowDate {
		return
	}
	e.lastFlowDate = s.Date

	bothBuying := s.ForeignNet > 0 && s.InstitutionalNet > 0
	bothSelling := s.ForeignNet < 0 && s.InstitutionalNet < 0
	if !bothBuying && !bothSelling {
		return
	}

	for _, r := range e.rules {
		if !r.Active || r.Type != models.AlertTradingSignal {
			continue
		}

		var hit bool
		switch r.Direction {
		case models.DirectionBoth:
			hit = bothBuying || bothSelling
		case models.DirectionAbove:
			hit = bothBuying
		case models.DirectionBelow:
			hit = bothSelling
		}
		if hit {
			e.dispatch(r, flowCategory(bothBuying), flowMessage(e.displayName(), bothBuying, s))
		}
	}
}

// dispatch performs the three effects for a qualifying hit unless the
// rule instance already fired this session.
func (e *Engine) dispatch(r models.AlertRule, category notify.Category, message string) {
	key := FiredKey{RuleID: r.ID, Type: r.Type}
	if _, ok := e.fired[key]; ok {
		return
	}
	e.fired[key] = struct{}{}

	now := time.Now()

	if e.toaster != nil {
		e.toaster.Show(notify.Toast{
			Message:   message,
			Category:  category,
			Duration:  e.toastDuration,
			Timestamp: now,
		})
	}

	if e.history != nil {
		e.history.Append(history.Entry{
			Ticker:     e.ticker,
			TickerName: e.displayName(),
			Type:       r.Type,
			Message:    message,
			Timestamp:  now,
		})
	}

	if e.auditor != nil {
		e.auditor.RecordAsync(audit.Record{
			RuleID:    r.ID,
			Ticker:    e.ticker,
			AlertType: string(r.Type),
			Message:   message,
		})
	}

	logging.LogAlert(e.logger, r.ID, e.ticker, string(r.Type), message)
}

func (e *Engine) displayName() string {
	if e.tickerName != "" {
		return e.tickerName
	}
	return e.ticker
}
