// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the cert-tracker API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, hub, svc)

# Endpoints

Health:

	GET /health

Tenants (registration is public; the rest require X-API-Key):

	POST /tenants            - Register tenant (returns api_key once)
	GET  /tenants/me         - Current tenant
	PUT  /tenants/me/webhook - Set webhook URL (returns secret once)

CRM clients:

	POST   /clients      - Create client
	GET    /clients      - List clients
	GET    /clients/{id} - Get client
	PUT    /clients/{id} - Update client
	DELETE /clients/{id} - Delete client

CRM jobs:

	POST   /jobs             - Create job
	GET    /jobs             - List jobs (?status=, ?client_id=)
	GET    /jobs/{id}        - Get job
	PUT    /jobs/{id}        - Update job fields
	POST   /jobs/{id}/status - Transition job status
	DELETE /jobs/{id}        - Delete job

Certificates:

	POST   /certificates              - Monitor a domain
	GET    /certificates              - List with days_left
	GET    /certificates/{id}         - Get certificate
	PUT    /certificates/{id}         - Pause/resume, relink client
	DELETE /certificates/{id}         - Stop monitoring
	POST   /certificates/{id}/check   - Probe immediately
	GET    /certificates/{id}/history - Recent check results

Alerts:

	GET  /alerts            - List alerts (?unacknowledged=true)
	POST /alerts/{id}/ack   - Acknowledge alert
	GET  /alerts/stream     - WebSocket alert feed

All tenant-scoped routes are wrapped in middleware.WithTenant, which
resolves the caller from the X-API-Key header. The stream endpoint
authenticates itself so the key can also arrive as ?api_key=.
*/
package router
