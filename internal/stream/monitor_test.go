package stream

import (
	"testing"

	"github.com/rs/zerolog"

	"krx-sentinel/internal/models"
)

// fakeTarget records every call the monitor makes.
type fakeTarget struct {
	resets     []string
	ruleSets   [][]models.AlertRule
	ticks      []models.Tick
	flows      []models.FlowSnapshot
	prevCloses []float64
}

func (f *fakeTarget) Reset(ticker, name string) { f.resets = append(f.resets, ticker) }
func (f *fakeTarget) SetRules(rules []models.AlertRule) {
	f.ruleSets = append(f.ruleSets, rules)
}
func (f *fakeTarget) SetPreviousClose(close float64) { f.prevCloses = append(f.prevCloses, close) }
func (f *fakeTarget) OnTick(t models.Tick)           { f.ticks = append(f.ticks, t) }
func (f *fakeTarget) OnFlow(s models.FlowSnapshot)   { f.flows = append(f.flows, s) }

func testRules() []models.AlertRule {
	return []models.AlertRule{
		{ID: 1, Ticker: "005930", Type: models.AlertBuy, Direction: models.DirectionBelow, TargetPrice: 50000, Active: true},
		{ID: 2, Ticker: "000660", Type: models.AlertSell, Direction: models.DirectionAbove, TargetPrice: 200000, Active: true},
	}
}

func TestWatchResetsBeforeData(t *testing.T) {
	target := &fakeTarget{}
	m := NewMonitor(target, zerolog.Nop())
	m.SetRules(testRules())

	m.Watch("005930", "삼성전자")

	if len(target.resets) != 1 || target.resets[0] != "005930" {
		t.Fatalf("watch did not reset the engine: %v", target.resets)
	}
	if len(target.ruleSets) != 1 {
		t.Fatalf("watch did not push rules")
	}
	rules := target.ruleSets[0]
	if len(rules) != 1 || rules[0].ID != 1 {
		t.Errorf("rules not filtered to monitored ticker: %+v", rules)
	}
}

func TestWatchSameTickerIsNoOp(t *testing.T) {
	target := &fakeTarget{}
	m := NewMonitor(target, zerolog.Nop())

	m.Watch("005930", "삼성전자")
	m.Watch("005930", "삼성전자") // redundant pass, no reset

	if len(target.resets) != 1 {
		t.Fatalf("redundant watch cleared session state: %d resets", len(target.resets))
	}
}

func TestTickerChangeResetsAgain(t *testing.T) {
	target := &fakeTarget{}
	m := NewMonitor(target, zerolog.Nop())
	m.SetRules(testRules())

	m.Watch("005930", "삼성전자")
	m.Watch("000660", "SK하이닉스")

	if len(target.resets) != 2 || target.resets[1] != "000660" {
		t.Fatalf("ticker change did not reset: %v", target.resets)
	}
	rules := target.ruleSets[len(target.ruleSets)-1]
	if len(rules) != 1 || rules[0].ID != 2 {
		t.Errorf("rules not re-filtered for new ticker: %+v", rules)
	}
}

func TestMonitorFiltersForeignTraffic(t *testing.T) {
	target := &fakeTarget{}
	m := NewMonitor(target, zerolog.Nop())
	m.Watch("005930", "")

	m.OnTick(models.Tick{Ticker: "000660", Price: 100})
	m.OnFlow(models.FlowSnapshot{Ticker: "000660", Date: "2026-08-28"})
	m.OnPreviousClose("000660", 100)

	if len(target.ticks)+len(target.flows)+len(target.prevCloses) != 0 {
		t.Fatalf("updates for another instrument leaked through")
	}

	m.OnTick(models.Tick{Ticker: "005930", Price: 100})
	m.OnPreviousClose("005930", 99)

	if len(target.ticks) != 1 || len(target.prevCloses) != 1 {
		t.Fatalf("updates for the monitored instrument were dropped")
	}
}

func TestOnSessionSwitchesInstrument(t *testing.T) {
	target := &fakeTarget{}
	m := NewMonitor(target, zerolog.Nop())
	m.SetRules(testRules())

	m.OnSession("005930", "삼성전자")
	m.OnSession("000660", "SK하이닉스")

	if m.Ticker() != "000660" {
		t.Fatalf("ticker = %s, want 000660", m.Ticker())
	}
	if len(target.resets) != 2 {
		t.Errorf("expected a reset per session change, got %d", len(target.resets))
	}
}

func TestSetRulesWhileWatchingRepushes(t *testing.T) {
	target := &fakeTarget{}
	m := NewMonitor(target, zerolog.Nop())
	m.Watch("005930", "")

	m.SetRules(testRules())

	last := target.ruleSets[len(target.ruleSets)-1]
	if len(last) != 1 || last[0].Ticker != "005930" {
		t.Fatalf("rule change did not repush filtered rules: %+v", last)
	}
}
