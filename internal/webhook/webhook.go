// Package webhook posts delivery payloads to the outbound automation
// platform. Dispatch is at most once: failures are logged, never retried,
// never surfaced to the invoking flow.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"infocommander/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dispatcher sends fire-and-forget payloads to one configured URL.
// An empty URL disables dispatching entirely.
type Dispatcher struct {
	url     string
	client  HTTPClient
	log     *slog.Logger
	timeout time.Duration
}

// New creates a Dispatcher for the given webhook URL.
func New(url string, client HTTPClient, log *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Dispatcher{
		url:     url,
		client:  client,
		log:     log,
		timeout: 10 * time.Second,
	}
}

// Enabled reports whether a webhook URL is configured.
func (d *Dispatcher) Enabled() bool {
	return d.url != ""
}

// Dispatch posts the payload as JSON. The timestamp is filled in when empty.
func (d *Dispatcher) Dispatch(ctx context.Context, payload model.DeliveryPayload) {
	if d.url == "" {
		return
	}
	if payload.Timestamp == "" {
		payload.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("marshal webhook payload", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		d.log.Error("create webhook request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Error("webhook dispatch", "target", payload.Target, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		d.log.Error("webhook dispatch rejected", "target", payload.Target, "status", resp.StatusCode)
		return
	}

	d.log.Info("webhook dispatched", "target", payload.Target)
}
