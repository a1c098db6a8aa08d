// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL avoids engine-specific defaults (NOW(), JSONB) so it runs unchanged
on PostgreSQL and SQLite.

# Tables

The schema includes:

  - tenant: Customer organizations and their webhook settings
  - client: CRM contacts, tenant-scoped
  - job: CRM work items with a status lifecycle
  - certificate: Monitored domains and last-known certificate metadata
  - cert_check: One row per TLS probe
  - alert: Threshold alerts
  - webhook_delivery: Notification delivery audit

# Tenancy

Every tenant-owned table carries tenant_id with an index. Row visibility is
enforced in the application: the tenant-context middleware resolves the
calling tenant and every query filters on tenant_id.

# Relationships

	tenant 1──* client
	tenant 1──* job
	tenant 1──* certificate
	certificate 1──* cert_check
	certificate 1──* alert
	alert 1──* webhook_delivery
	client 1──* job (optional)
	client 1──* certificate (optional)

Foreign keys to tenant use ON DELETE CASCADE; optional client links use
ON DELETE SET NULL.

# Invariants

  - certificate is unique on (tenant_id, domain, port)
  - alert is unique on (certificate_id, threshold_days, not_after): a renewed
    certificate (new not_after) re-arms every threshold
*/
package db
