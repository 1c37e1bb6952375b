package audit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRecordAsyncPostsJSON(t *testing.T) {
	received := make(chan Record, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var rec Record
		if err := json.Unmarshal(body, &rec); err != nil {
			t.Errorf("body not JSON: %v", err)
		}
		received <- rec
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	c.RecordAsync(Record{RuleID: 1, Ticker: "005930", AlertType: "buy", Message: "목표가 도달"})

	select {
	case rec := <-received:
		if rec.RuleID != 1 || rec.Ticker != "005930" || rec.AlertType != "buy" {
			t.Errorf("unexpected record: %+v", rec)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("audit record never arrived")
	}
}

func TestRecordAsyncNeverBlocksOnSlowServer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 10*time.Second, zerolog.Nop())

	start := time.Now()
	c.RecordAsync(Record{RuleID: 1})
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("RecordAsync blocked the caller for %v", elapsed)
	}
}

func TestFailuresAreDiscarded(t *testing.T) {
	// Unreachable endpoint: the write fails in the background and the
	// failure never surfaces.
	c := NewClient("http://127.0.0.1:1/audit", 100*time.Millisecond, zerolog.Nop())
	c.RecordAsync(Record{RuleID: 1})
	time.Sleep(300 * time.Millisecond)
}

func TestDisabledClientIsNoOp(t *testing.T) {
	c := NewClient("", time.Second, zerolog.Nop())
	if c.Enabled() {
		t.Fatal("empty URL should disable the client")
	}
	c.RecordAsync(Record{RuleID: 1}) // must not panic

	var nilClient *Client
	nilClient.RecordAsync(Record{RuleID: 2}) // nil receiver is safe too
}

func TestErrorStatusIsIgnored(t *testing.T) {
	done := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		done <- struct{}{}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	c.RecordAsync(Record{RuleID: 1})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("request never arrived")
	}
}
