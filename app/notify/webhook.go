package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxSendRetries = 3

// WebhookNotifier posts messages as JSON to an HTTP endpoint, one request
// per destination. Transient failures are retried with exponential backoff
// before the delivery is reported as failed.
type WebhookNotifier struct {
	endpoint   string
	httpClient *http.Client
}

var _ Notifier = (*WebhookNotifier)(nil)

type webhookMessage struct {
	Destination string `json:"destination"`
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

func NewWebhookNotifier(endpoint string, httpClient *http.Client) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

func (n *WebhookNotifier) SendText(ctx context.Context, destination, text string) error {
	return n.send(ctx, webhookMessage{
		Destination: destination,
		Type:        "text",
		Text:        text,
	})
}

func (n *WebhookNotifier) SendImage(ctx context.Context, destination, imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	return n.send(ctx, webhookMessage{
		Destination: destination,
		Type:        "image",
		ImageBase64: base64.StdEncoding.EncodeToString(data),
	})
}

func (n *WebhookNotifier) send(ctx context.Context, msg webhookMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	operation := func() error {
		return n.post(ctx, body)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxSendRetries), ctx)

	notify := func(err error, wait time.Duration) {
		slog.Warn("Delivery attempt failed, retrying",
			"destination", msg.Destination, "type", msg.Type, "wait", wait.String(), "error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("failed to deliver %s message to %s: %w", msg.Type, msg.Destination, err)
	}

	return nil
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", n.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}
	if resp.StatusCode >= 400 {
		// Client errors will not improve on retry
		return backoff.Permanent(fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}

	return nil
}
