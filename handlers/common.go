// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/models"
)

// requireTenant pulls the tenant injected by middleware.WithTenant.
// Routes are always wrapped, so a miss means a wiring bug, but the
// response is still a clean 401 rather than a panic.
func requireTenant(w http.ResponseWriter, r *http.Request) (models.Tenant, bool) {
	tenant, ok := middleware.TenantFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Tenant context missing")
		return models.Tenant{}, false
	}
	return tenant, true
}

// isUniqueViolation matches duplicate-key errors from both lib/pq and
// modernc.org/sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key value violates unique constraint") ||
		strings.Contains(s, "UNIQUE constraint failed")
}
