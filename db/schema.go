// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// Timestamps are written by the application so the same DDL runs on both
// PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Tenants
CREATE TABLE IF NOT EXISTS tenant (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    webhook_url TEXT,
    webhook_secret TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Clients (CRM contacts, tenant-scoped)
CREATE TABLE IF NOT EXISTS client (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenant(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    company TEXT,
    notes TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_client_tenant_id ON client(tenant_id);

-- Jobs (CRM work items, tenant-scoped)
CREATE TABLE IF NOT EXISTS job (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenant(id) ON DELETE CASCADE,
    client_id TEXT REFERENCES client(id) ON DELETE SET NULL,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'scheduled', 'in_progress', 'done', 'cancelled')),
    scheduled_for TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_job_tenant_id ON job(tenant_id);
CREATE INDEX IF NOT EXISTS idx_job_tenant_status ON job(tenant_id, status);
CREATE INDEX IF NOT EXISTS idx_job_client_id ON job(client_id);

-- Monitored certificates
CREATE TABLE IF NOT EXISTS certificate (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenant(id) ON DELETE CASCADE,
    client_id TEXT REFERENCES client(id) ON DELETE SET NULL,
    domain TEXT NOT NULL,
    port INTEGER NOT NULL DEFAULT 443,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'paused')),
    issuer TEXT,
    serial TEXT,
    not_before TIMESTAMP,
    not_after TIMESTAMP,
    last_checked_at TIMESTAMP,
    last_error TEXT,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (tenant_id, domain, port)
);

CREATE INDEX IF NOT EXISTS idx_certificate_tenant_id ON certificate(tenant_id);
CREATE INDEX IF NOT EXISTS idx_certificate_status ON certificate(status, last_checked_at);

-- Probe log, one row per TLS check
CREATE TABLE IF NOT EXISTS cert_check (
    id TEXT PRIMARY KEY,
    certificate_id TEXT NOT NULL REFERENCES certificate(id) ON DELETE CASCADE,
    checked_at TIMESTAMP NOT NULL,
    issuer TEXT,
    not_after TIMESTAMP,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_cert_check_certificate ON cert_check(certificate_id, checked_at);

-- Threshold alerts; one per (certificate, threshold, not_after) so a
-- renewed certificate re-arms every boundary
CREATE TABLE IF NOT EXISTS alert (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenant(id) ON DELETE CASCADE,
    certificate_id TEXT NOT NULL REFERENCES certificate(id) ON DELETE CASCADE,
    threshold_days INTEGER NOT NULL,
    days_left INTEGER NOT NULL,
    not_after TIMESTAMP NOT NULL,
    message TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    acknowledged_at TIMESTAMP,
    UNIQUE (certificate_id, threshold_days, not_after)
);

CREATE INDEX IF NOT EXISTS idx_alert_tenant_id ON alert(tenant_id);
CREATE INDEX IF NOT EXISTS idx_alert_certificate_id ON alert(certificate_id);

-- Webhook delivery audit
CREATE TABLE IF NOT EXISTS webhook_delivery (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenant(id) ON DELETE CASCADE,
    alert_id TEXT NOT NULL REFERENCES alert(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'delivered', 'failed')),
    attempts INTEGER NOT NULL DEFAULT 0,
    response_code INTEGER,
    last_attempt_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_webhook_delivery_tenant ON webhook_delivery(tenant_id);
CREATE INDEX IF NOT EXISTS idx_webhook_delivery_alert ON webhook_delivery(alert_id);
`
