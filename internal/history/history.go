// Package history keeps the bounded alert history with unread tracking.
package history

import (
	"sync"
	"time"

	"krx-sentinel/internal/models"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 50

// Entry is one recorded alert. The history assigns the ID and read flag.
type Entry struct {
	ID         int64
	Ticker     string
	TickerName string
	Type       models.AlertType
	Message    string
	Timestamp  time.Time
	Read       bool
}

// Sink accepts alert entries. Append returns the stored entry with its
// assigned ID.
type Sink interface {
	Append(e Entry) Entry
}

// Log is a bounded in-memory alert history. When capacity is exceeded
// the oldest entry is evicted.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	nextID   int64
	unread   int
}

// NewLog creates a Log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append implements Sink.
func (l *Log) Append(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	e.ID = l.nextID
	e.Read = false
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	l.entries = append(l.entries, e)
	l.unread++

	if len(l.entries) > l.capacity {
		evicted := l.entries[0]
		l.entries = l.entries[1:]
		if !evicted.Read {
			l.unread--
		}
	}

	return e
}

// Entries returns a copy of the history, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// UnreadCount returns the number of entries not yet marked read.
func (l *Log) UnreadCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.unread
}

// MarkAllRead marks every entry as read and zeroes the unread counter.
func (l *Log) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		l.entries[i].Read = true
	}
	l.unread = 0
}

// Tee returns a Sink that appends to every given sink. The entry
// returned is the one stored by the first sink.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Append(e Entry) Entry {
	var first Entry
	for i, s := range t {
		if s == nil {
			continue
		}
		stored := s.Append(e)
		if i == 0 {
			first = stored
		}
	}
	return first
}
