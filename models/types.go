package models

import "time"

// Job status constants
const (
	JobStatusOpen       = "open"
	JobStatusScheduled  = "scheduled"
	JobStatusInProgress = "in_progress"
	JobStatusDone       = "done"
	JobStatusCancelled  = "cancelled"
)

// Certificate status constants
const (
	CertStatusActive = "active"
	CertStatusPaused = "paused"
)

// Webhook delivery status constants
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// ThresholdExpired is the pseudo-threshold recorded for certificates that are
// already past not_after.
const ThresholdExpired = 0

// Request types

type RegisterTenantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpdateWebhookRequest struct {
	WebhookURL string `json:"webhook_url"`
}

type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

type CreateJobRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ClientID     string     `json:"client_id"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

type UpdateJobRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ClientID     string     `json:"client_id"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status"`
}

type CreateCertificateRequest struct {
	Domain   string `json:"domain"`
	Port     int    `json:"port"`
	ClientID string `json:"client_id"`
}

type UpdateCertificateRequest struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// Response types

type RegisterTenantResponse struct {
	TenantID string `json:"tenant_id"`
	APIKey   string `json:"api_key"`
}

type UpdateWebhookResponse struct {
	WebhookURL    string `json:"webhook_url"`
	WebhookSecret string `json:"webhook_secret"`
}

type ClientListResponse struct {
	Clients []Client `json:"clients"`
}

type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

type CertificateListResponse struct {
	Certificates []Certificate `json:"certificates"`
}

type CheckCertificateResponse struct {
	Certificate Certificate `json:"certificate"`
	Check       CertCheck   `json:"check"`
}

type CertHistoryResponse struct {
	Checks []CertCheck `json:"checks"`
}

type AlertListResponse struct {
	Alerts []Alert `json:"alerts"`
}

// Domain types

type Tenant struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	WebhookURL    *string   `json:"webhook_url,omitempty"`
	WebhookSecret *string   `json:"-"` // Never expose in JSON
	CreatedAt     time.Time `json:"created_at"`
}

type Client struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Job struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	ClientID     *string    `json:"client_id,omitempty"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Certificate struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	ClientID      *string    `json:"client_id,omitempty"`
	Domain        string     `json:"domain"`
	Port          int        `json:"port"`
	Status        string     `json:"status"`
	Issuer        *string    `json:"issuer,omitempty"`
	Serial        *string    `json:"serial,omitempty"`
	NotBefore     *time.Time `json:"not_before,omitempty"`
	NotAfter      *time.Time `json:"not_after,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastError     *string    `json:"last_error,omitempty"`
	DaysLeft      *int       `json:"days_left,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CertCheck struct {
	ID            string     `json:"id"`
	CertificateID string     `json:"certificate_id"`
	CheckedAt     time.Time  `json:"checked_at"`
	OK            bool       `json:"ok"`
	Issuer        *string    `json:"issuer,omitempty"`
	NotAfter      *time.Time `json:"not_after,omitempty"`
	LatencyMS     int64      `json:"latency_ms"`
	Error         *string    `json:"error,omitempty"`
}

type Alert struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	CertificateID  string     `json:"certificate_id"`
	Domain         string     `json:"domain"`
	ThresholdDays  int        `json:"threshold_days"`
	DaysLeft       int        `json:"days_left"`
	NotAfter       time.Time  `json:"not_after"`
	Message        string     `json:"message"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

type WebhookDelivery struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	AlertID       string     `json:"alert_id"`
	URL           string     `json:"url"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	ResponseCode  *int       `json:"response_code,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// WebhookPayload is the body POSTed to a tenant's webhook URL when an alert
// fires. The X-CertTracker-Signature header carries a hex HMAC-SHA256 of the
// body computed with the tenant's webhook secret.
type WebhookPayload struct {
	AlertID       string    `json:"alert_id"`
	CertificateID string    `json:"certificate_id"`
	Domain        string    `json:"domain"`
	ThresholdDays int       `json:"threshold_days"`
	DaysLeft      int       `json:"days_left"`
	NotAfter      time.Time `json:"not_after"`
	Message       string    `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
