// Package notifier implements the outbound notification collaborator.
// Delivery is best-effort: sends are bounded by a timeout and failures are
// reported to the caller only so it can log them, never escalated.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"keypool/internal/pkg/config"

	"github.com/google/uuid"
)

type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookNotifier(cfg config.NotifierConfig, logger *slog.Logger) *WebhookNotifier {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type payload struct {
	UserID  uuid.UUID `json:"user_id"`
	Message string    `json:"message"`
}

// Send posts one message for one user. With no webhook configured it only
// logs, which keeps local development working without a chat relay.
func (n *WebhookNotifier) Send(ctx context.Context, userID uuid.UUID, message string) error {
	if n.url == "" {
		n.logger.Info("notification (no webhook configured)", "user_id", userID, "message", message)
		return nil
	}

	body, err := json.Marshal(payload{UserID: userID, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification relay returned status %d", resp.StatusCode)
	}
	return nil
}
