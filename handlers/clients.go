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
)

type ClientHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewClientHandler(db *sql.DB, cfg cliparse.Config) *ClientHandler {
	return &ClientHandler{db: db, cfg: cfg}
}

// nullable turns an empty string into a NULL column value
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create handles POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req models.CreateClientRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	clientID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate client ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO client (id, tenant_id, name, email, phone, company, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, clientID, tenant.ID, req.Name, nullable(req.Email), nullable(req.Phone),
		nullable(req.Company), nullable(req.Notes), now, now)

	if err != nil {
		slog.Error("failed to insert client", "error", err, "tenant_id", tenant.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	slog.Info("client created", "tenant_id", tenant.ID, "client_id", clientID)

	client, err := h.loadClient(tenant.ID, clientID)
	if err != nil {
		slog.Error("failed to load client", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, client)
}

// List handles GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, tenant_id, name, email, phone, company, notes, created_at, updated_at
		FROM client
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenant.ID)

	if err != nil {
		slog.Error("failed to query clients", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone,
			&c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			slog.Error("failed to scan client", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		clients = append(clients, c)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClientListResponse{Clients: clients})
}

// Get handles GET /clients/{id}
// Rows belonging to another tenant are indistinguishable from absence.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	clientID := r.PathValue("id")
	if clientID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "client_id is required")
		return
	}

	client, err := h.loadClient(tenant.ID, clientID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		slog.Error("failed to query client", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, client)
}

// Update handles PUT /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	clientID := r.PathValue("id")
	if clientID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "client_id is required")
		return
	}

	var req models.UpdateClientRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := h.db.Exec(`
		UPDATE client
		SET name = $1, email = $2, phone = $3, company = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND tenant_id = $8
	`, req.Name, nullable(req.Email), nullable(req.Phone), nullable(req.Company),
		nullable(req.Notes), time.Now(), clientID, tenant.ID)

	if err != nil {
		slog.Error("failed to update client", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update client")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
		return
	}

	client, err := h.loadClient(tenant.ID, clientID)
	if err != nil {
		slog.Error("failed to load client", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, client)
}

// Delete handles DELETE /clients/{id}
// Jobs and certificates linked to the client survive with client_id NULL.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	clientID := r.PathValue("id")
	if clientID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "client_id is required")
		return
	}

	result, err := h.db.Exec(`
		DELETE FROM client WHERE id = $1 AND tenant_id = $2
	`, clientID, tenant.ID)

	if err != nil {
		slog.Error("failed to delete client", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
		return
	}

	slog.Info("client deleted", "tenant_id", tenant.ID, "client_id", clientID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) loadClient(tenantID, clientID string) (models.Client, error) {
	var c models.Client
	err := h.db.QueryRow(`
		SELECT id, tenant_id, name, email, phone, company, notes, created_at, updated_at
		FROM client
		WHERE id = $1 AND tenant_id = $2
	`, clientID, tenantID).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone,
		&c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// clientBelongsToTenant verifies an optional client link before it is stored
func clientBelongsToTenant(db *sql.DB, tenantID, clientID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM client WHERE id = $1 AND tenant_id = $2)
	`, clientID, tenantID).Scan(&exists)
	return exists, err
}
