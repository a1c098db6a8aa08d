// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/models"
	"github.com/scaper/cert-tracker/stream"
)

type AlertHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *stream.Hub
}

func NewAlertHandler(db *sql.DB, cfg cliparse.Config, hub *stream.Hub) *AlertHandler {
	return &AlertHandler{db: db, cfg: cfg, hub: hub}
}

// List handles GET /alerts; ?unacknowledged=true narrows to open alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	query := `
		SELECT a.id, a.tenant_id, a.certificate_id, c.domain, a.threshold_days,
		       a.days_left, a.not_after, a.message, a.created_at, a.acknowledged_at
		FROM alert a
		JOIN certificate c ON c.id = a.certificate_id
		WHERE a.tenant_id = $1`
	if r.URL.Query().Get("unacknowledged") == "true" {
		query += " AND a.acknowledged_at IS NULL"
	}
	query += " ORDER BY a.created_at DESC"

	rows, err := h.db.Query(query, tenant.ID)
	if err != nil {
		slog.Error("failed to query alerts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.TenantID, &a.CertificateID, &a.Domain,
			&a.ThresholdDays, &a.DaysLeft, &a.NotAfter, &a.Message,
			&a.CreatedAt, &a.AcknowledgedAt); err != nil {
			slog.Error("failed to scan alert", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		alerts = append(alerts, a)
	}

	middleware.JSONResponse(w, http.StatusOK, models.AlertListResponse{Alerts: alerts})
}

// Ack handles POST /alerts/{id}/ack. Acknowledging twice is a no-op that
// keeps the original timestamp.
func (h *AlertHandler) Ack(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	alertID := r.PathValue("id")
	if alertID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "alert_id is required")
		return
	}

	_, err := h.db.Exec(`
		UPDATE alert SET acknowledged_at = $1
		WHERE id = $2 AND tenant_id = $3 AND acknowledged_at IS NULL
	`, time.Now(), alertID, tenant.ID)
	if err != nil {
		slog.Error("failed to acknowledge alert", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}

	var a models.Alert
	err = h.db.QueryRow(`
		SELECT a.id, a.tenant_id, a.certificate_id, c.domain, a.threshold_days,
		       a.days_left, a.not_after, a.message, a.created_at, a.acknowledged_at
		FROM alert a
		JOIN certificate c ON c.id = a.certificate_id
		WHERE a.id = $1 AND a.tenant_id = $2
	`, alertID, tenant.ID).Scan(&a.ID, &a.TenantID, &a.CertificateID, &a.Domain,
		&a.ThresholdDays, &a.DaysLeft, &a.NotAfter, &a.Message,
		&a.CreatedAt, &a.AcknowledgedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		slog.Error("failed to query alert", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, a)
}

// Stream handles GET /alerts/stream, upgrading to a WebSocket that receives
// every alert raised for the tenant. Browsers cannot set headers on WebSocket
// dials, so the API key is accepted from ?api_key= as well as X-API-Key.
func (h *AlertHandler) Stream(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("X-API-Key")
	if apiKey == "" {
		apiKey = r.URL.Query().Get("api_key")
	}
	if apiKey == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "API key required")
		return
	}

	tenantID, err := auth.ValidateAPIKey(apiKey, h.cfg.APIKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	var exists bool
	err = h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tenant WHERE id = $1)`, tenantID).Scan(&exists)
	if err != nil {
		slog.Error("failed to verify tenant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown tenant")
		return
	}

	h.hub.Serve(tenantID, w, r)
}
