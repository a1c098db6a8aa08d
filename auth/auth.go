// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAPIKey creates an HMAC-based API key for a tenant.
// The key embeds the tenant ID so it can be verified without a lookup:
// <tenant_id>.<base64url HMAC-SHA256(tenant_id, salt)>
func GenerateAPIKey(tenantID, salt string) string {
	return tenantID + "." + signature(tenantID, salt)
}

// ValidateAPIKey checks the key's HMAC and returns the embedded tenant ID
func ValidateAPIKey(apiKey, salt string) (string, error) {
	tenantID, sig, found := strings.Cut(apiKey, ".")
	if !found || tenantID == "" {
		return "", ErrInvalidAPIKey
	}
	expected := signature(tenantID, salt)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidAPIKey
	}
	return tenantID, nil
}

func signature(tenantID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(tenantID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// GenerateWebhookSecret creates a random secret used to sign webhook payloads
func GenerateWebhookSecret() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate webhook secret: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// SignPayload computes the hex HMAC-SHA256 of a webhook body.
// Receivers recompute this over the raw body and compare against the
// X-CertTracker-Signature header.
func SignPayload(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
