package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"krx-sentinel/internal/history"
	"krx-sentinel/internal/models"
)

func newTestStore(t *testing.T, capacity int) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sentinel.db")
	s, err := NewSQLiteStore(path, capacity, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storeEntry(msg string) history.Entry {
	return history.Entry{
		Ticker:     "005930",
		TickerName: "삼성전자",
		Type:       models.AlertBuy,
		Message:    msg,
	}
}

func TestAppendAndRecent(t *testing.T) {
	s := newTestStore(t, 50)
	ctx := context.Background()

	first := s.Append(storeEntry("first"))
	second := s.Append(storeEntry("second"))

	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("IDs not assigned: %d, %d", first.ID, second.ID)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "second" {
		t.Errorf("entries not newest-first: %+v", entries)
	}
	if entries[0].Type != models.AlertBuy || entries[0].Ticker != "005930" {
		t.Errorf("fields not round-tripped: %+v", entries[0])
	}
}

func TestUnreadAndMarkAllRead(t *testing.T) {
	s := newTestStore(t, 50)
	ctx := context.Background()

	s.Append(storeEntry("one"))
	s.Append(storeEntry("two"))

	unread, err := s.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 2 {
		t.Errorf("unread = %d, want 2", unread)
	}

	if err := s.MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}

	unread, err = s.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread = %d after MarkAllRead", unread)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	s := newTestStore(t, 3)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		s.Append(storeEntry(fmt.Sprintf("msg-%d", i)))
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries after prune, want 3", len(entries))
	}
	if entries[0].Message != "msg-5" || entries[2].Message != "msg-3" {
		t.Errorf("wrong entries survived pruning: %+v", entries)
	}
}

func TestStoreSatisfiesSink(t *testing.T) {
	var _ history.Sink = (*SQLiteStore)(nil)
	var _ HistoryStore = (*SQLiteStore)(nil)
}
