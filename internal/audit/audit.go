// Package audit sends best-effort alert records to the backend audit
// endpoint. Writes are fire-and-forget: the caller is never blocked on
// the network and failures are discarded by design, never retried.
package audit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Record is the audit payload for one dispatched alert.
type Record struct {
	RuleID    int64  `json:"rule_id"`
	Ticker    string `json:"ticker"`
	AlertType string `json:"alert_type"`
	Message   string `json:"message"`
}

// Client posts audit records to a fixed endpoint.
type Client struct {
	url     string
	enabled bool
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient creates an audit client. An empty URL yields a disabled
// client whose RecordAsync is a no-op.
func NewClient(url string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:     url,
		enabled: url != "",
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Enabled reports whether records will actually be sent.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// RecordAsync dispatches the record in a background goroutine and
// returns immediately. The response and any error are discarded; a
// missed audit entry is preferable to delaying the caller.
func (c *Client) RecordAsync(r Record) {
	if !c.Enabled() {
		return
	}
	go c.post(r)
}

func (c *Client) post(r Record) {
	body, err := json.Marshal(r)
	if err != nil {
		c.logger.Debug().Err(err).Msg("audit marshal failed")
		return
	}

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.logger.Debug().Err(err).Msg("audit request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", c.url).Msg("audit write failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
}
