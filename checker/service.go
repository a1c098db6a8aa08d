// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checker

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/models"
	"github.com/scaper/cert-tracker/notify"
	"github.com/scaper/cert-tracker/stream"
)

var ErrNotFound = errors.New("certificate not found")

// Service owns the certificate check lifecycle: probing, recording check
// results, and raising threshold alerts.
type Service struct {
	db       *sql.DB
	cfg      cliparse.Config
	hub      *stream.Hub
	notifier *notify.Notifier
}

func NewService(db *sql.DB, cfg cliparse.Config, hub *stream.Hub, notifier *notify.Notifier) *Service {
	return &Service{db: db, cfg: cfg, hub: hub, notifier: notifier}
}

// Run scans on startup and then on every tick until the context is cancelled
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	s.ScanDue(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("checker stopped")
			return
		case <-ticker.C:
			s.ScanDue(ctx)
		}
	}
}

// ScanDue probes every active certificate whose last check is older than the
// check interval, using a fixed pool of workers.
func (s *Service) ScanDue(ctx context.Context) {
	runID := uuid.NewString()
	cutoff := time.Now().Add(-s.cfg.CheckInterval)

	rows, err := s.db.Query(`
		SELECT id FROM certificate
		WHERE status = $1 AND (last_checked_at IS NULL OR last_checked_at < $2)
	`, models.CertStatusActive, cutoff)
	if err != nil {
		slog.Error("failed to query due certificates", "error", err, "run_id", runID)
		return
	}

	var due []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan certificate ID", "error", err, "run_id", runID)
			rows.Close()
			return
		}
		due = append(due, id)
	}
	rows.Close()

	if len(due) == 0 {
		return
	}

	slog.Info("certificate scan started", "run_id", runID, "due", len(due))

	jobs := make(chan string)
	var ok, failed atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < s.cfg.CheckWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for certID := range jobs {
				_, check, err := s.CheckOne(ctx, certID)
				if err != nil || check.Error != nil {
					failed.Add(1)
				} else {
					ok.Add(1)
				}
			}
		}()
	}

enqueue:
	for _, id := range due {
		select {
		case <-ctx.Done():
			break enqueue
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	slog.Info("certificate scan completed", "run_id", runID,
		"checked", len(due), "ok", ok.Load(), "failed", failed.Load())
}

// CheckOne probes a single certificate and records the outcome. A failed
// probe is a successful check (the failure is the result); the returned
// error covers only missing rows and storage problems.
func (s *Service) CheckOne(ctx context.Context, certID string) (models.Certificate, models.CertCheck, error) {
	var cert models.Certificate
	err := s.db.QueryRow(`
		SELECT id, tenant_id, client_id, domain, port, status, created_at
		FROM certificate
		WHERE id = $1
	`, certID).Scan(&cert.ID, &cert.TenantID, &cert.ClientID, &cert.Domain,
		&cert.Port, &cert.Status, &cert.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Certificate{}, models.CertCheck{}, ErrNotFound
	}
	if err != nil {
		return models.Certificate{}, models.CertCheck{}, err
	}

	res, probeErr := Probe(ctx, cert.Domain, cert.Port, s.cfg.ProbeTimeout)

	check, err := s.record(ctx, &cert, res, probeErr)
	if err != nil {
		return models.Certificate{}, models.CertCheck{}, err
	}

	return cert, check, nil
}

// record writes the cert_check row, updates the certificate's last-known
// state, and raises a threshold alert when a boundary has been crossed.
func (s *Service) record(ctx context.Context, cert *models.Certificate, res Result, probeErr error) (models.CertCheck, error) {
	now := time.Now()

	checkID, err := auth.GenerateID(16)
	if err != nil {
		return models.CertCheck{}, err
	}

	check := models.CertCheck{
		ID:            checkID,
		CertificateID: cert.ID,
		CheckedAt:     now,
		LatencyMS:     res.Latency.Milliseconds(),
	}

	if probeErr != nil {
		errStr := probeErr.Error()
		check.Error = &errStr
	} else {
		issuer, serial := res.Issuer, res.Serial
		notBefore, notAfter := res.NotBefore, res.NotAfter
		check.Issuer = &issuer
		check.NotAfter = &notAfter
		check.OK = res.VerifyError == ""
		if res.VerifyError != "" {
			verifyErr := res.VerifyError
			check.Error = &verifyErr
		}
		cert.Issuer = &issuer
		cert.Serial = &serial
		cert.NotBefore = &notBefore
		cert.NotAfter = &notAfter
	}
	cert.LastCheckedAt = &now
	cert.LastError = check.Error

	_, err = s.db.Exec(`
		INSERT INTO cert_check (id, certificate_id, checked_at, issuer, not_after, latency_ms, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, check.ID, cert.ID, check.CheckedAt, check.Issuer, check.NotAfter, check.LatencyMS, check.Error)
	if err != nil {
		return models.CertCheck{}, err
	}

	if probeErr != nil {
		_, err = s.db.Exec(`
			UPDATE certificate SET last_checked_at = $1, last_error = $2 WHERE id = $3
		`, now, check.Error, cert.ID)
	} else {
		_, err = s.db.Exec(`
			UPDATE certificate
			SET issuer = $1, serial = $2, not_before = $3, not_after = $4,
			    last_checked_at = $5, last_error = $6
			WHERE id = $7
		`, cert.Issuer, cert.Serial, cert.NotBefore, cert.NotAfter, now, check.Error, cert.ID)
	}
	if err != nil {
		return models.CertCheck{}, err
	}

	if cert.NotAfter != nil {
		daysLeft := notify.DaysLeft(now, *cert.NotAfter)
		cert.DaysLeft = &daysLeft

		if err := s.raiseAlert(ctx, *cert, daysLeft, now); err != nil {
			slog.Error("failed to raise alert", "error", err, "certificate_id", cert.ID)
		}
	}

	slog.Info("certificate checked", "certificate_id", cert.ID, "domain", cert.Domain,
		"ok", check.OK, "latency_ms", check.LatencyMS)

	return check, nil
}

// raiseAlert creates the alert for the tightest crossed threshold, once per
// (certificate, threshold, not_after). The unique constraint backstops the
// existence check against concurrent scans.
func (s *Service) raiseAlert(ctx context.Context, cert models.Certificate, daysLeft int, now time.Time) error {
	threshold, crossed := notify.Crossed(daysLeft, s.cfg.AlertThresholds)
	if !crossed {
		return nil
	}

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM alert
			WHERE certificate_id = $1 AND threshold_days = $2 AND not_after = $3
		)
	`, cert.ID, threshold, *cert.NotAfter).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	alertID, err := auth.GenerateID(16)
	if err != nil {
		return err
	}

	alert := models.Alert{
		ID:            alertID,
		TenantID:      cert.TenantID,
		CertificateID: cert.ID,
		Domain:        cert.Domain,
		ThresholdDays: threshold,
		DaysLeft:      daysLeft,
		NotAfter:      *cert.NotAfter,
		Message:       notify.Message(cert.Domain, daysLeft, *cert.NotAfter),
		CreatedAt:     now,
	}

	_, err = s.db.Exec(`
		INSERT INTO alert (id, tenant_id, certificate_id, threshold_days, days_left, not_after, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, alert.ID, alert.TenantID, alert.CertificateID, alert.ThresholdDays,
		alert.DaysLeft, alert.NotAfter, alert.Message, alert.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil // concurrent scan won the race
		}
		return err
	}

	slog.Info("alert raised", "tenant_id", cert.TenantID, "certificate_id", cert.ID,
		"threshold_days", threshold, "days_left", daysLeft)

	s.hub.Broadcast(cert.TenantID, alert)

	tenant, err := s.loadTenant(cert.TenantID)
	if err != nil {
		return err
	}
	if err := s.notifier.Deliver(ctx, tenant, alert); err != nil {
		slog.Warn("alert webhook delivery failed", "error", err, "alert_id", alert.ID)
	}

	return nil
}

func (s *Service) loadTenant(tenantID string) (models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.QueryRow(`
		SELECT id, name, email, webhook_url, webhook_secret, created_at
		FROM tenant
		WHERE id = $1
	`, tenantID).Scan(&tenant.ID, &tenant.Name, &tenant.Email,
		&tenant.WebhookURL, &tenant.WebhookSecret, &tenant.CreatedAt)
	return tenant, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
