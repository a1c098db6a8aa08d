// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the cert-tracker API server.

cert-tracker is a multi-tenant service that combines a small CRM (clients
and jobs) with SSL certificate expiration monitoring. A background checker
probes monitored hosts over TLS, records results, and raises alerts when a
certificate crosses a configured expiry threshold. Alerts reach tenants via
signed webhooks and a WebSocket stream.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... API_KEY_SALT=secret go run main.go

Or with flags:

	go run main.go -p 4380 -d "postgres://..." -api-salt secret

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - API_KEY_SALT (-api-salt): secret for tenant API key HMAC

Optional settings:

  - PORT (-p): server port (default: 4380)
  - DATABASE_TYPE (-t): "postgres" or "sqlite" (default: postgres)
  - CHECK_INTERVAL (-check-interval): scan period (default: 1h)
  - CHECK_WORKERS (-check-workers): probe concurrency (default: 8)
  - PROBE_TIMEOUT (-probe-timeout): per-probe TLS timeout (default: 10s)
  - WEBHOOK_ATTEMPTS (-webhook-attempts): delivery retries (default: 3)
  - ALERT_THRESHOLDS (-thresholds): days-left boundaries (default: 30,14,7,1)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (tenants, clients, jobs, certificates, alerts)
  - router: Route definitions using Go 1.22+ routing
  - middleware: tenant resolution, CORS, logging, JSON helpers
  - models: Request/response types
  - auth: API key and webhook signature primitives
  - db: Schema creation
  - checker: TLS probing and the scan scheduler
  - notify: threshold evaluation and webhook delivery
  - stream: WebSocket alert fan-out
  - cliparse: Configuration parsing
  - airline: reference DDL for the sample airline dataset

See package documentation for each component.
*/
package main
