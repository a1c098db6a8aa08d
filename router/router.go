// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/scaper/cert-tracker/checker"
	"github.com/scaper/cert-tracker/cliparse"
	"github.com/scaper/cert-tracker/handlers"
	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/stream"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, hub *stream.Hub, svc *checker.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	tenantHandler := handlers.NewTenantHandler(db, cfg)
	clientHandler := handlers.NewClientHandler(db, cfg)
	jobHandler := handlers.NewJobHandler(db, cfg)
	certHandler := handlers.NewCertificateHandler(db, cfg, svc)
	alertHandler := handlers.NewAlertHandler(db, cfg, hub)

	// authed wraps tenant-scoped routes with logging and API-key resolution
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithTenant(db, cfg.APIKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Tenant registration (public, returns the API key once)
	mux.HandleFunc("POST /tenants", middleware.WithLogging(tenantHandler.Register))

	// Tenant self-service
	mux.HandleFunc("GET /tenants/me", authed(tenantHandler.GetMe))
	mux.HandleFunc("PUT /tenants/me/webhook", authed(tenantHandler.UpdateWebhook))

	// CRM clients
	mux.HandleFunc("POST /clients", authed(clientHandler.Create))
	mux.HandleFunc("GET /clients", authed(clientHandler.List))
	mux.HandleFunc("GET /clients/{id}", authed(clientHandler.Get))
	mux.HandleFunc("PUT /clients/{id}", authed(clientHandler.Update))
	mux.HandleFunc("DELETE /clients/{id}", authed(clientHandler.Delete))

	// CRM jobs
	mux.HandleFunc("POST /jobs", authed(jobHandler.Create))
	mux.HandleFunc("GET /jobs", authed(jobHandler.List))
	mux.HandleFunc("GET /jobs/{id}", authed(jobHandler.Get))
	mux.HandleFunc("PUT /jobs/{id}", authed(jobHandler.Update))
	mux.HandleFunc("POST /jobs/{id}/status", authed(jobHandler.UpdateStatus))
	mux.HandleFunc("DELETE /jobs/{id}", authed(jobHandler.Delete))

	// Certificate monitoring
	mux.HandleFunc("POST /certificates", authed(certHandler.Create))
	mux.HandleFunc("GET /certificates", authed(certHandler.List))
	mux.HandleFunc("GET /certificates/{id}", authed(certHandler.Get))
	mux.HandleFunc("PUT /certificates/{id}", authed(certHandler.Update))
	mux.HandleFunc("DELETE /certificates/{id}", authed(certHandler.Delete))
	mux.HandleFunc("POST /certificates/{id}/check", authed(certHandler.Check))
	mux.HandleFunc("GET /certificates/{id}/history", authed(certHandler.History))

	// Alerts
	mux.HandleFunc("GET /alerts", authed(alertHandler.List))
	mux.HandleFunc("POST /alerts/{id}/ack", authed(alertHandler.Ack))
	// Stream authenticates itself so browsers can pass the key as a query param
	mux.HandleFunc("GET /alerts/stream", middleware.WithLogging(alertHandler.Stream))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cert-tracker API v1"))
	})

	return mux
}
