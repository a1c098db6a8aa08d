// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/models"
)

type TenantHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewTenantHandler(db *sql.DB, cfg cliparse.Config) *TenantHandler {
	return &TenantHandler{db: db, cfg: cfg}
}

// Register handles POST /tenants
// Public signup; returns the tenant ID and its API key. The key is shown
// exactly once - it is derived from the salt, never stored.
func (h *TenantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterTenantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	// Generate tenant ID
	tenantID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate tenant ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register tenant")
		return
	}

	apiKey := auth.GenerateAPIKey(tenantID, h.cfg.APIKeySalt)

	_, err = h.db.Exec(`
		INSERT INTO tenant (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`, tenantID, req.Name, req.Email, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
			return
		}
		slog.Error("failed to insert tenant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register tenant")
		return
	}

	// Signup is unauthenticated, so keep an abuse trail without storing
	// raw caller addresses
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.APIKeySalt)
	slog.Info("tenant registered", "tenant_id", tenantID, "name", req.Name, "ip_hash", ipHash)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterTenantResponse{
		TenantID: tenantID,
		APIKey:   apiKey,
	})
}

// GetMe handles GET /tenants/me
func (h *TenantHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tenant)
}

// UpdateWebhook handles PUT /tenants/me/webhook
// Sets the alert webhook URL and rotates the signing secret. The secret is
// returned exactly once; deliveries are signed with it from then on.
func (h *TenantHandler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req models.UpdateWebhookRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.WebhookURL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "webhook_url is required")
		return
	}
	u, err := url.Parse(req.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "webhook_url must be an absolute http(s) URL")
		return
	}

	secret, err := auth.GenerateWebhookSecret()
	if err != nil {
		slog.Error("failed to generate webhook secret", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update webhook")
		return
	}

	_, err = h.db.Exec(`
		UPDATE tenant
		SET webhook_url = $1, webhook_secret = $2
		WHERE id = $3
	`, req.WebhookURL, secret, tenant.ID)

	if err != nil {
		slog.Error("failed to update webhook", "error", err, "tenant_id", tenant.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update webhook")
		return
	}

	slog.Info("webhook updated", "tenant_id", tenant.ID)

	middleware.JSONResponse(w, http.StatusOK, models.UpdateWebhookResponse{
		WebhookURL:    req.WebhookURL,
		WebhookSecret: secret,
	})
}
