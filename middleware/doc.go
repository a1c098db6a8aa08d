// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Tenant Context

WithTenant is the multi-tenancy boundary. It validates the X-API-Key header,
loads the tenant row, and injects it into the request context:

	mux.HandleFunc("GET /clients", middleware.WithLogging(
		middleware.WithTenant(db, cfg.APIKeySalt, clientHandler.List)))

Handlers retrieve the tenant with TenantFrom and must scope every query by
tenant.ID. A request that fails key validation never reaches a handler.

# Helpers

JSONResponse, ErrorResponse, and ParseJSONBody standardize the JSON surface.
WithLogging logs request start/completion with duration. CORS handles
preflight requests. GetClientIP unwraps proxy headers.
*/
package middleware
