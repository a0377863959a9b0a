// Package webhook implements the Notifier port by posting JSON payloads to an
// HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// defaultTimeout bounds a single delivery attempt.
const defaultTimeout = 10 * time.Second

// Notifier posts notifications to a webhook URL.
type Notifier struct {
	url    string
	client *http.Client
}

// Option configures the notifier.
type Option func(*Notifier)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// NewNotifier creates a notifier posting to url.
func NewNotifier(url string, opts ...Option) *Notifier {
	n := &Notifier{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// payload is the wire shape of a delivery.
type payload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

// Notify posts the notification as a JSON document. A non-2xx response is an
// error; callers decide whether delivery failures matter.
func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	if n.url == "" {
		return fmt.Errorf("webhook URL is not configured")
	}

	body, err := json.Marshal(payload{
		Title:  notification.Title,
		Body:   notification.Body,
		Status: notification.Status,
		RunID:  notification.RunID,
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)
