// Package notify provides the ephemeral toast notification surface.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Category classifies a toast for display purposes.
type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// Toast is an ephemeral, auto-dismissing notification.
// Duration is how long the UI should keep it visible.
type Toast struct {
	Message   string
	Category  Category
	Duration  time.Duration
	Timestamp time.Time
}

// Toaster displays toasts. Implementations must not block the caller
// for longer than it takes to hand the toast off.
type Toaster interface {
	Show(t Toast)
}

// ToasterFunc is a function adapter for the Toaster interface.
type ToasterFunc func(t Toast)

// Show implements Toaster.
func (f ToasterFunc) Show(t Toast) {
	f(t)
}

// NopToaster discards all toasts.
type NopToaster struct{}

// Show does nothing.
func (NopToaster) Show(Toast) {}

// TerminalToaster renders toasts as colored lines on a terminal.
type TerminalToaster struct {
	out   io.Writer
	bell  bool
	color bool
	mu    sync.Mutex
}

// NewTerminalToaster creates a TerminalToaster writing to out.
// A nil out defaults to stdout.
func NewTerminalToaster(out io.Writer, bell, color bool) *TerminalToaster {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalToaster{out: out, bell: bell, color: color}
}

// Show implements Toaster.
func (tt *TerminalToaster) Show(t Toast) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	label := categoryLabel(t.Category)
	if tt.color {
		label = colorize(t.Category, label)
	}

	fmt.Fprintf(tt.out, "%s %s %s\n", ts.Format("15:04:05"), label, t.Message)

	if tt.bell {
		fmt.Fprint(tt.out, "\a")
	}
}

func categoryLabel(c Category) string {
	switch c {
	case CategorySuccess:
		return "[SUCCESS]"
	case CategoryWarning:
		return "[WARNING]"
	case CategoryError:
		return "[ERROR]"
	default:
		return "[INFO]"
	}
}

func colorize(c Category, s string) string {
	switch c {
	case CategorySuccess:
		return "\033[32m" + s + "\033[0m"
	case CategoryWarning:
		return "\033[33m" + s + "\033[0m"
	case CategoryError:
		return "\033[31m" + s + "\033[0m"
	default:
		return "\033[36m" + s + "\033[0m"
	}
}
