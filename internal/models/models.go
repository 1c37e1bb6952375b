// Package models defines the core data types shared across the application.
package models

import "time"

// AlertType classifies what kind of condition an alert rule watches.
type AlertType string

const (
	// AlertBuy fires when price reaches a buy target.
	AlertBuy AlertType = "buy"
	// AlertSell fires when price reaches a sell target.
	AlertSell AlertType = "sell"
	// AlertPriceChange fires on a percentage move from the previous close.
	AlertPriceChange AlertType = "price_change"
	// AlertTradingSignal fires on aligned foreign/institutional net flows.
	AlertTradingSignal AlertType = "trading_signal"
)

// Direction controls which side of the condition triggers the alert.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
	DirectionBoth  Direction = "both"
)

// AlertRule is a user-defined trigger condition for one instrument.
// Rules are supplied by configuration and are read-only to the engine.
type AlertRule struct {
	ID          int64
	Ticker      string
	Type        AlertType
	Direction   Direction
	TargetPrice float64
	Memo        string
	Active      bool
}

// Tick is a single intraday price observation.
type Tick struct {
	Ticker    string
	Price     float64
	Timestamp time.Time
}

// FlowSnapshot holds per-date aggregated net buy/sell amounts by
// investor category. Amounts are in Korean won.
type FlowSnapshot struct {
	Ticker           string
	Date             string
	ForeignNet       float64
	InstitutionalNet float64
}

// AlertEvent is a dispatched notification, before the history store
// assigns it an ID and a read flag.
type AlertEvent struct {
	Ticker     string
	TickerName string
	Type       AlertType
	Message    string
	Timestamp  time.Time
}
