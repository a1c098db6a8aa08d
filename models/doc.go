// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterTenantRequest: name, email
  - UpdateWebhookRequest: webhook_url
  - CreateClientRequest / UpdateClientRequest: name, email, phone, company, notes
  - CreateJobRequest / UpdateJobRequest: title, description, client_id, scheduled_for
  - UpdateJobStatusRequest: status
  - CreateCertificateRequest: domain, port, client_id
  - UpdateCertificateRequest: status, client_id

# Response Types

Types for JSON responses:

  - RegisterTenantResponse: tenant_id, api_key
  - UpdateWebhookResponse: webhook_url, webhook_secret
  - ClientListResponse, JobListResponse, CertificateListResponse, AlertListResponse
  - CheckCertificateResponse: certificate, check
  - CertHistoryResponse: checks
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Tenant: a customer organization; the webhook secret never serializes
  - Client: a CRM contact owned by a tenant
  - Job: a unit of work with a status lifecycle
  - Certificate: a monitored (domain, port) endpoint with last-known state
  - CertCheck: one probe result
  - Alert: a threshold crossing for one issued certificate
  - WebhookDelivery: an audit row per webhook delivery
  - WebhookPayload: the body POSTed to tenant webhooks

# Constants

Job statuses:

	JobStatusOpen       = "open"
	JobStatusScheduled  = "scheduled"
	JobStatusInProgress = "in_progress"
	JobStatusDone       = "done"
	JobStatusCancelled  = "cancelled"

Certificate statuses:

	CertStatusActive = "active"
	CertStatusPaused = "paused"

Webhook delivery statuses:

	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
*/
package models
