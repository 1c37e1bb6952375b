// Package store provides durable persistence for the alert history.
package store

import (
	"context"

	"krx-sentinel/internal/history"
)

// HistoryStore is the durable side of the alert history.
type HistoryStore interface {
	history.Sink
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkAllRead(ctx context.Context) error
	Close() error
}
