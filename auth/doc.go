// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key generation and validation for the cert-tracker API.

# API Keys

Tenant API keys are deterministic HMACs so the server can verify a key
without a database round-trip:

	key := auth.GenerateAPIKey(tenantID, salt)
	tenantID, err := auth.ValidateAPIKey(key, salt)

The key format is <tenant_id>.<base64url HMAC-SHA256(tenant_id, salt)>.
Rotating the salt invalidates every issued key.

# Webhook Signatures

Webhook payloads are signed with a per-tenant random secret:

	sig := auth.SignPayload(body, secret)

The signature travels in the X-CertTracker-Signature header as lowercase hex.

# IDs

GenerateID returns a random hex string and is used for all row IDs.
*/
package auth
