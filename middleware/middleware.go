// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/scaper/cert-tracker/auth"
	"github.com/scaper/cert-tracker/models"
)

type contextKey int

const tenantContextKey contextKey = iota

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		// Call the next handler
		next(w, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// WithTenant resolves the calling tenant from the X-API-Key header and
// injects it into the request context. The key's HMAC is verified before
// the tenant row is loaded, so unknown keys never touch the database.
func WithTenant(db *sql.DB, salt string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			ErrorResponse(w, http.StatusUnauthorized, "X-API-Key header required")
			return
		}

		tenantID, err := auth.ValidateAPIKey(apiKey, salt)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		var tenant models.Tenant
		err = db.QueryRow(`
			SELECT id, name, email, webhook_url, webhook_secret, created_at
			FROM tenant
			WHERE id = $1
		`, tenantID).Scan(
			&tenant.ID, &tenant.Name, &tenant.Email,
			&tenant.WebhookURL, &tenant.WebhookSecret, &tenant.CreatedAt,
		)

		if err == sql.ErrNoRows {
			ErrorResponse(w, http.StatusUnauthorized, "Unknown tenant")
			return
		}
		if err != nil {
			slog.Error("failed to load tenant", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		next(w, r.WithContext(ContextWithTenant(r.Context(), tenant)))
	}
}

// ContextWithTenant returns a context carrying the tenant
func ContextWithTenant(ctx context.Context, tenant models.Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// TenantFrom extracts the tenant placed in the context by WithTenant
func TenantFrom(ctx context.Context) (models.Tenant, bool) {
	tenant, ok := ctx.Value(tenantContextKey).(models.Tenant)
	return tenant, ok
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS middleware allows cross-origin requests from the frontend
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	// Strip port if present
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
