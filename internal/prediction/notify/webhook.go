package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"inspection-cloud/internal/prediction/application"
)

// WebhookNotifier posts critical escalation events to a webhook endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	errLog func(format string, args ...any)
}

// WebhookOption configures the webhook notifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		if client != nil {
			n.client = client
		}
	}
}

// WithErrorLog assigns a sink for delivery failures.
func WithErrorLog(errLog func(format string, args ...any)) WebhookOption {
	return func(n *WebhookNotifier) {
		if errLog != nil {
			n.errLog = errLog
		}
	}
}

// NewWebhookNotifier constructs a webhook notifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook notifier: empty url")
	}
	notifier := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		errLog: func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier, nil
}

// Notify delivers the event. Delivery failures are logged, never propagated;
// escalation is best-effort and must not disturb the scoring path.
func (n *WebhookNotifier) Notify(ctx context.Context, event application.EscalationEvent) {
	if n == nil || n.url == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.errLog("escalation webhook marshal error: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.errLog("escalation webhook request error: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		n.errLog("escalation webhook delivery error: inspection=%d err=%v", event.InspectionID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.errLog("escalation webhook delivery error: inspection=%d status=%d", event.InspectionID, resp.StatusCode)
	}
}

var _ application.Notifier = (*WebhookNotifier)(nil)
