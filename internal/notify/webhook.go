package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const errorClientTimeout = 30 * time.Second

// Notifier posts messages to a chat webhook.
type Notifier struct {
	client *http.Client
	url    string
}

func New(client *http.Client, url string) *Notifier {
	return &Notifier{client: client, url: url}
}

// Send posts {"text": message} to the webhook and fails on any non-2xx reply.
func (n *Notifier) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook error: status %d", resp.StatusCode)
	}
	return nil
}

// SendError reports a pipeline failure on its own short-lived client so the
// attempt survives whatever broke the run's shared session.
func SendError(ctx context.Context, url, message string) error {
	client := &http.Client{Timeout: errorClientTimeout}
	return New(client, url).Send(ctx, message)
}
