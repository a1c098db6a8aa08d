// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the cert-tracker API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - TenantHandler: registration, tenant info, webhook setup
  - ClientHandler: CRM client CRUD
  - JobHandler: CRM job CRUD and status transitions
  - CertificateHandler: monitored certificates, manual checks, history
  - AlertHandler: alert listing, acknowledgement, WebSocket stream

Handlers are created via constructor functions that accept *sql.DB and Config:

	clientHandler := handlers.NewClientHandler(db, cfg)

CertificateHandler additionally takes the checker service, and AlertHandler
the stream hub.

# Tenancy

Every row carries a tenant_id and every query filters on it. A row that
belongs to another tenant is reported as 404, never 403, so tenants cannot
probe for the existence of foreign data.

# Job Lifecycle

Jobs progress through: open → scheduled → in_progress → done, with
cancelled reachable from any non-terminal state. done and cancelled are
terminal; edits to a finished job return 409.

# Certificate Monitoring

Certificates are identified by (tenant, domain, port). Creating a
duplicate returns 409. POST /certificates/{id}/check probes the host
immediately; results land in cert_check either way.
*/
package handlers
