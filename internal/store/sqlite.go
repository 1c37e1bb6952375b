package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"krx-sentinel/internal/history"
	"krx-sentinel/internal/models"
)

// SQLiteStore implements HistoryStore using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	capacity int
	logger   zerolog.Logger
}

// NewSQLiteStore opens (or creates) the alert history database. The
// history is pruned to capacity entries, oldest first.
func NewSQLiteStore(dbPath string, capacity int, logger zerolog.Logger) (*SQLiteStore, error) {
	if capacity <= 0 {
		capacity = history.DefaultCapacity
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{
		db:       db,
		capacity: capacity,
		logger:   logger,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the alert events table and index.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alert_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		ticker_name TEXT,
		alert_type TEXT NOT NULL,
		message TEXT NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_alert_events_ticker ON alert_events(ticker);
	CREATE INDEX IF NOT EXISTS idx_alert_events_created ON alert_events(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append implements history.Sink. Persistence is best effort: on a
// write failure the entry is logged and dropped so a disk problem
// never blocks alert dispatch.
func (s *SQLiteStore) Append(e history.Entry) history.Entry {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO alert_events (ticker, ticker_name, alert_type, message, read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		e.Ticker, e.TickerName, string(e.Type), e.Message, e.Timestamp,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to persist alert event")
		return e
	}

	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	e.Read = false

	s.prune()
	return e
}

// prune deletes the oldest entries beyond capacity.
func (s *SQLiteStore) prune() {
	_, err := s.db.Exec(
		`DELETE FROM alert_events WHERE id NOT IN (
			SELECT id FROM alert_events ORDER BY id DESC LIMIT ?
		)`, s.capacity)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to prune alert events")
	}
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = s.capacity
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ticker, ticker_name, alert_type, message, read, created_at
		 FROM alert_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var e history.Entry
		var alertType string
		var read int
		if err := rows.Scan(&e.ID, &e.Ticker, &e.TickerName, &alertType, &e.Message, &read, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		e.Type = models.AlertType(alertType)
		e.Read = read != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UnreadCount returns the number of unread entries.
func (s *SQLiteStore) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alert_events WHERE read = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every stored entry as read.
func (s *SQLiteStore) MarkAllRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE alert_events SET read = 1 WHERE read = 0`)
	if err != nil {
		return fmt.Errorf("failed to mark alerts read: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
