// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/models"
)

// Notifier delivers alert webhooks and records each delivery attempt.
type Notifier struct {
	db       *sql.DB
	client   *http.Client
	attempts int
	backoff  time.Duration
}

func NewNotifier(db *sql.DB, cfg cliparse.Config) *Notifier {
	return &Notifier{
		db:       db,
		client:   &http.Client{Timeout: cfg.ProbeTimeout},
		attempts: cfg.WebhookAttempts,
		backoff:  cfg.WebhookBackoff,
	}
}

// Deliver POSTs the alert to the tenant's webhook URL, retrying with linear
// backoff. Each delivery gets an audit row in webhook_delivery. Tenants
// without a webhook URL are skipped silently.
func (n *Notifier) Deliver(ctx context.Context, tenant models.Tenant, alert models.Alert) error {
	if tenant.WebhookURL == nil || *tenant.WebhookURL == "" {
		return nil
	}
	url := *tenant.WebhookURL

	payload := models.WebhookPayload{
		AlertID:       alert.ID,
		CertificateID: alert.CertificateID,
		Domain:        alert.Domain,
		ThresholdDays: alert.ThresholdDays,
		DaysLeft:      alert.DaysLeft,
		NotAfter:      alert.NotAfter,
		Message:       alert.Message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	deliveryID := uuid.NewString()
	_, err = n.db.Exec(`
		INSERT INTO webhook_delivery (id, tenant_id, alert_id, url, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`, deliveryID, tenant.ID, alert.ID, url, models.DeliveryPending, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}

	var lastCode int
	for attempt := 1; attempt <= n.attempts; attempt++ {
		code, err := n.post(ctx, url, body, tenant.WebhookSecret, deliveryID)
		lastCode = code

		now := time.Now()
		if err == nil && code >= 200 && code < 300 {
			_, uerr := n.db.Exec(`
				UPDATE webhook_delivery
				SET status = $1, attempts = $2, response_code = $3, last_attempt_at = $4
				WHERE id = $5
			`, models.DeliveryDelivered, attempt, code, now, deliveryID)
			if uerr != nil {
				slog.Error("failed to update webhook delivery", "error", uerr, "delivery_id", deliveryID)
			}
			slog.Info("webhook delivered", "tenant_id", tenant.ID, "alert_id", alert.ID,
				"delivery_id", deliveryID, "attempt", attempt)
			return nil
		}

		if err != nil {
			slog.Warn("webhook attempt failed", "tenant_id", tenant.ID,
				"delivery_id", deliveryID, "attempt", attempt, "error", err)
		} else {
			slog.Warn("webhook attempt rejected", "tenant_id", tenant.ID,
				"delivery_id", deliveryID, "attempt", attempt, "code", code)
		}

		_, uerr := n.db.Exec(`
			UPDATE webhook_delivery SET attempts = $1, response_code = $2, last_attempt_at = $3 WHERE id = $4
		`, attempt, nullableCode(code), now, deliveryID)
		if uerr != nil {
			slog.Error("failed to update webhook delivery", "error", uerr, "delivery_id", deliveryID)
		}

		if attempt < n.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.backoff * time.Duration(attempt)):
			}
		}
	}

	_, uerr := n.db.Exec(`
		UPDATE webhook_delivery SET status = $1 WHERE id = $2
	`, models.DeliveryFailed, deliveryID)
	if uerr != nil {
		slog.Error("failed to update webhook delivery", "error", uerr, "delivery_id", deliveryID)
	}

	return fmt.Errorf("webhook delivery failed after %d attempts (last code %d)", n.attempts, lastCode)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte, secret *string, deliveryID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CertTracker-Delivery", deliveryID)
	if secret != nil && *secret != "" {
		req.Header.Set("X-CertTracker-Signature", auth.SignPayload(body, *secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func nullableCode(code int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(code), Valid: code != 0}
}
