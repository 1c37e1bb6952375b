package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTerminalToasterOutput(t *testing.T) {
	var buf bytes.Buffer
	tt := NewTerminalToaster(&buf, false, false)

	tt.Show(Toast{
		Message:   "삼성전자 매수 목표가 도달!",
		Category:  CategoryInfo,
		Duration:  5 * time.Second,
		Timestamp: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
	})

	out := buf.String()
	if !strings.Contains(out, "10:30:00") {
		t.Errorf("timestamp missing: %q", out)
	}
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("category label missing: %q", out)
	}
	if !strings.Contains(out, "삼성전자 매수 목표가 도달!") {
		t.Errorf("message missing: %q", out)
	}
	if strings.Contains(out, "\a") {
		t.Errorf("bell emitted while disabled")
	}
}

func TestTerminalToasterBell(t *testing.T) {
	var buf bytes.Buffer
	tt := NewTerminalToaster(&buf, true, false)

	tt.Show(Toast{Message: "x", Category: CategoryError})

	if !strings.Contains(buf.String(), "\a") {
		t.Errorf("bell not emitted")
	}
	if !strings.Contains(buf.String(), "[ERROR]") {
		t.Errorf("error label missing")
	}
}

func TestCategoryLabels(t *testing.T) {
	cases := map[Category]string{
		CategoryInfo:    "[INFO]",
		CategorySuccess: "[SUCCESS]",
		CategoryWarning: "[WARNING]",
		CategoryError:   "[ERROR]",
		Category("odd"): "[INFO]",
	}
	for c, want := range cases {
		if got := categoryLabel(c); got != want {
			t.Errorf("categoryLabel(%s) = %s, want %s", c, got, want)
		}
	}
}

func TestToasterFunc(t *testing.T) {
	var got Toast
	f := ToasterFunc(func(t Toast) { got = t })
	f.Show(Toast{Message: "hi"})
	if got.Message != "hi" {
		t.Errorf("ToasterFunc did not forward the toast")
	}
}
