// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/checker"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/models"
	"github.com/scaper/cert-tracker/notify"
)

// historyLimit caps GET /certificates/{id}/history
const historyLimit = 50

type CertificateHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc *checker.Service
}

func NewCertificateHandler(db *sql.DB, cfg cliparse.Config, svc *checker.Service) *CertificateHandler {
	return &CertificateHandler{db: db, cfg: cfg, svc: svc}
}

// validDomain rejects anything that is not a bare hostname
func validDomain(domain string) bool {
	if domain == "" {
		return false
	}
	return !strings.ContainsAny(domain, "/ ") && !strings.Contains(domain, "://")
}

// Create handles POST /certificates
func (h *CertificateHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req models.CreateCertificateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !validDomain(req.Domain) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "domain must be a bare hostname")
		return
	}

	port := req.Port
	if port == 0 {
		port = 443
	}
	if port < 1 || port > 65535 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "port must be between 1 and 65535")
		return
	}

	var clientID sql.NullString
	if req.ClientID != "" {
		belongs, err := clientBelongsToTenant(h.db, tenant.ID, req.ClientID)
		if err != nil {
			slog.Error("failed to verify client", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !belongs {
			middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
			return
		}
		clientID = sql.NullString{String: req.ClientID, Valid: true}
	}

	certID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate certificate ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create certificate")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO certificate (id, tenant_id, client_id, domain, port, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, certID, tenant.ID, clientID, req.Domain, port, models.CertStatusActive, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Certificate for this domain and port already exists")
			return
		}
		slog.Error("failed to insert certificate", "error", err, "tenant_id", tenant.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create certificate")
		return
	}

	slog.Info("certificate created", "tenant_id", tenant.ID, "certificate_id", certID,
		"domain", req.Domain, "port", port)

	cert, err := h.loadCertificate(tenant.ID, certID)
	if err != nil {
		slog.Error("failed to load certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, cert)
}

// List handles GET /certificates
func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, tenant_id, client_id, domain, port, status, issuer, serial,
		       not_before, not_after, last_checked_at, last_error, created_at
		FROM certificate
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenant.ID)

	if err != nil {
		slog.Error("failed to query certificates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	now := time.Now()
	certs := []models.Certificate{}
	for rows.Next() {
		var c models.Certificate
		if err := rows.Scan(&c.ID, &c.TenantID, &c.ClientID, &c.Domain, &c.Port,
			&c.Status, &c.Issuer, &c.Serial, &c.NotBefore, &c.NotAfter,
			&c.LastCheckedAt, &c.LastError, &c.CreatedAt); err != nil {
			slog.Error("failed to scan certificate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		fillDaysLeft(&c, now)
		certs = append(certs, c)
	}

	middleware.JSONResponse(w, http.StatusOK, models.CertificateListResponse{Certificates: certs})
}

// Get handles GET /certificates/{id}
func (h *CertificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	certID := r.PathValue("id")
	if certID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "certificate_id is required")
		return
	}

	cert, err := h.loadCertificate(tenant.ID, certID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Certificate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, cert)
}

// Update handles PUT /certificates/{id}; only status and client link change,
// domain and port are immutable once monitored.
func (h *CertificateHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	certID := r.PathValue("id")
	if certID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "certificate_id is required")
		return
	}

	var req models.UpdateCertificateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Status != models.CertStatusActive && req.Status != models.CertStatusPaused {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be active or paused")
		return
	}

	var clientID sql.NullString
	if req.ClientID != "" {
		belongs, err := clientBelongsToTenant(h.db, tenant.ID, req.ClientID)
		if err != nil {
			slog.Error("failed to verify client", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !belongs {
			middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
			return
		}
		clientID = sql.NullString{String: req.ClientID, Valid: true}
	}

	result, err := h.db.Exec(`
		UPDATE certificate SET status = $1, client_id = $2 WHERE id = $3 AND tenant_id = $4
	`, req.Status, clientID, certID, tenant.ID)

	if err != nil {
		slog.Error("failed to update certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update certificate")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Certificate not found")
		return
	}

	cert, err := h.loadCertificate(tenant.ID, certID)
	if err != nil {
		slog.Error("failed to load certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, cert)
}

// Delete handles DELETE /certificates/{id}; checks and alerts go with it
func (h *CertificateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	certID := r.PathValue("id")
	if certID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "certificate_id is required")
		return
	}

	result, err := h.db.Exec(`
		DELETE FROM certificate WHERE id = $1 AND tenant_id = $2
	`, certID, tenant.ID)

	if err != nil {
		slog.Error("failed to delete certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete certificate")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Certificate not found")
		return
	}

	slog.Info("certificate deleted", "tenant_id", tenant.ID, "certificate_id", certID)

	w.WriteHeader(http.StatusNoContent)
}

// Check handles POST /certificates/{id}/check, probing the host immediately
// instead of waiting for the next scheduled scan.
func (h *CertificateHandler) Check(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	certID := r.PathValue("id")
	if certID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "certificate_id is required")
		return
	}

	// Ownership check first so the probe never runs for foreign rows
	if _, err := h.loadCertificate(tenant.ID, certID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Certificate not found")
		return
	} else if err != nil {
		slog.Error("failed to query certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	cert, check, err := h.svc.CheckOne(r.Context(), certID)
	if errors.Is(err, checker.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Certificate not found")
		return
	}
	if err != nil {
		slog.Error("failed to check certificate", "error", err, "certificate_id", certID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Check failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckCertificateResponse{
		Certificate: cert,
		Check:       check,
	})
}

// History handles GET /certificates/{id}/history
func (h *CertificateHandler) History(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	certID := r.PathValue("id")
	if certID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "certificate_id is required")
		return
	}

	if _, err := h.loadCertificate(tenant.ID, certID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Certificate not found")
		return
	} else if err != nil {
		slog.Error("failed to query certificate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, certificate_id, checked_at, issuer, not_after, latency_ms, error
		FROM cert_check
		WHERE certificate_id = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`, certID, historyLimit)

	if err != nil {
		slog.Error("failed to query check history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	checks := []models.CertCheck{}
	for rows.Next() {
		var c models.CertCheck
		if err := rows.Scan(&c.ID, &c.CertificateID, &c.CheckedAt, &c.Issuer,
			&c.NotAfter, &c.LatencyMS, &c.Error); err != nil {
			slog.Error("failed to scan check", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		c.OK = c.Error == nil
		checks = append(checks, c)
	}

	middleware.JSONResponse(w, http.StatusOK, models.CertHistoryResponse{Checks: checks})
}

func (h *CertificateHandler) loadCertificate(tenantID, certID string) (models.Certificate, error) {
	var c models.Certificate
	err := h.db.QueryRow(`
		SELECT id, tenant_id, client_id, domain, port, status, issuer, serial,
		       not_before, not_after, last_checked_at, last_error, created_at
		FROM certificate
		WHERE id = $1 AND tenant_id = $2
	`, certID, tenantID).Scan(&c.ID, &c.TenantID, &c.ClientID, &c.Domain, &c.Port,
		&c.Status, &c.Issuer, &c.Serial, &c.NotBefore, &c.NotAfter,
		&c.LastCheckedAt, &c.LastError, &c.CreatedAt)
	if err == nil {
		fillDaysLeft(&c, time.Now())
	}
	return c, err
}

func fillDaysLeft(c *models.Certificate, now time.Time) {
	if c.NotAfter != nil {
		d := notify.DaysLeft(now, *c.NotAfter)
		c.DaysLeft = &d
	}
}
