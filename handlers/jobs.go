// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/models"
)

type JobHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewJobHandler(db *sql.DB, cfg cliparse.Config) *JobHandler {
	return &JobHandler{db: db, cfg: cfg}
}

// jobTransitions maps each job status to the statuses it may move to.
// done and cancelled are terminal.
var jobTransitions = map[string][]string{
	models.JobStatusOpen:       {models.JobStatusScheduled, models.JobStatusInProgress, models.JobStatusCancelled},
	models.JobStatusScheduled:  {models.JobStatusOpen, models.JobStatusInProgress, models.JobStatusCancelled},
	models.JobStatusInProgress: {models.JobStatusDone, models.JobStatusCancelled},
	models.JobStatusDone:       {},
	models.JobStatusCancelled:  {},
}

func validJobTransition(from, to string) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func isTerminalJobStatus(status string) bool {
	return status == models.JobStatusDone || status == models.JobStatusCancelled
}

// Create handles POST /jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req models.CreateJobRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	// An optional client link must point at this tenant's client
	if req.ClientID != "" {
		exists, err := clientBelongsToTenant(h.db, tenant.ID, req.ClientID)
		if err != nil {
			slog.Error("failed to verify client", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exists {
			middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
			return
		}
	}

	jobID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate job ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO job (id, tenant_id, client_id, title, description, status, scheduled_for, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, jobID, tenant.ID, nullable(req.ClientID), req.Title, nullable(req.Description),
		models.JobStatusOpen, req.ScheduledFor, now, now)

	if err != nil {
		slog.Error("failed to insert job", "error", err, "tenant_id", tenant.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	slog.Info("job created", "tenant_id", tenant.ID, "job_id", jobID)

	job, err := h.loadJob(tenant.ID, jobID)
	if err != nil {
		slog.Error("failed to load job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, job)
}

// List handles GET /jobs with optional ?status= and ?client_id= filters
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	query := `
		SELECT id, tenant_id, client_id, title, description, status, scheduled_for, created_at, updated_at
		FROM job
		WHERE tenant_id = $1`
	args := []interface{}{tenant.ID}

	if status := r.URL.Query().Get("status"); status != "" {
		if _, known := jobTransitions[status]; !known {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		args = append(args, clientID)
		query += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query jobs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.TenantID, &j.ClientID, &j.Title, &j.Description,
			&j.Status, &j.ScheduledFor, &j.CreatedAt, &j.UpdatedAt); err != nil {
			slog.Error("failed to scan job", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		jobs = append(jobs, j)
	}

	middleware.JSONResponse(w, http.StatusOK, models.JobListResponse{Jobs: jobs})
}

// Get handles GET /jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "job_id is required")
		return
	}

	job, err := h.loadJob(tenant.ID, jobID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		slog.Error("failed to query job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, job)
}

// Update handles PUT /jobs/{id}
// Terminal jobs (done, cancelled) are immutable.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "job_id is required")
		return
	}

	var req models.UpdateJobRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	job, err := h.loadJob(tenant.ID, jobID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		slog.Error("failed to query job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if isTerminalJobStatus(job.Status) {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot edit a finished job")
		return
	}

	if req.ClientID != "" {
		exists, err := clientBelongsToTenant(h.db, tenant.ID, req.ClientID)
		if err != nil {
			slog.Error("failed to verify client", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exists {
			middleware.ErrorResponse(w, http.StatusNotFound, "Client not found")
			return
		}
	}

	_, err = h.db.Exec(`
		UPDATE job
		SET title = $1, description = $2, client_id = $3, scheduled_for = $4, updated_at = $5
		WHERE id = $6 AND tenant_id = $7
	`, req.Title, nullable(req.Description), nullable(req.ClientID), req.ScheduledFor,
		time.Now(), jobID, tenant.ID)

	if err != nil {
		slog.Error("failed to update job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update job")
		return
	}

	job, err = h.loadJob(tenant.ID, jobID)
	if err != nil {
		slog.Error("failed to load job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, job)
}

// UpdateStatus handles POST /jobs/{id}/status
func (h *JobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "job_id is required")
		return
	}

	var req models.UpdateJobStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, known := jobTransitions[req.Status]; !known {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown status")
		return
	}

	job, err := h.loadJob(tenant.ID, jobID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		slog.Error("failed to query job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !validJobTransition(job.Status, req.Status) {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot move job from "+job.Status+" to "+req.Status)
		return
	}

	_, err = h.db.Exec(`
		UPDATE job SET status = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4
	`, req.Status, time.Now(), jobID, tenant.ID)

	if err != nil {
		slog.Error("failed to update job status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update job")
		return
	}

	slog.Info("job status changed", "tenant_id", tenant.ID, "job_id", jobID,
		"from", job.Status, "to", req.Status)

	job.Status = req.Status
	middleware.JSONResponse(w, http.StatusOK, job)
}

// Delete handles DELETE /jobs/{id}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "job_id is required")
		return
	}

	result, err := h.db.Exec(`
		DELETE FROM job WHERE id = $1 AND tenant_id = $2
	`, jobID, tenant.ID)

	if err != nil {
		slog.Error("failed to delete job", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete job")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	slog.Info("job deleted", "tenant_id", tenant.ID, "job_id", jobID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *JobHandler) loadJob(tenantID, jobID string) (models.Job, error) {
	var j models.Job
	err := h.db.QueryRow(`
		SELECT id, tenant_id, client_id, title, description, status, scheduled_for, created_at, updated_at
		FROM job
		WHERE id = $1 AND tenant_id = $2
	`, jobID, tenantID).Scan(&j.ID, &j.TenantID, &j.ClientID, &j.Title, &j.Description,
		&j.Status, &j.ScheduledFor, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}
