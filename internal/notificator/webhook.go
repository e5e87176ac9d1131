package notificator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// WebhookNotificator posts notifications as JSON to a single endpoint.
type WebhookNotificator struct {
	logger *logger.Logger
	url    string
	client *http.Client
}

func NewWebhookNotificator(logger *logger.Logger, url string) *WebhookNotificator {
	return &WebhookNotificator{
		logger: logger,
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotificator) Send(ctx context.Context, hook models.Webhook) error {
	body, err := json.Marshal(hook)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned %s", hook.Event, resp.Status)
	}
	w.logger.Debugw("Webhook delivered", "event", hook.Event, "status", resp.StatusCode)
	return nil
}
