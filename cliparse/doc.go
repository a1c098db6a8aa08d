// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles server configuration from CLI flags and environment
variables. Flags win over environment variables; required settings with
neither source produce an error.

Required: DATABASE_URL (-d), API_KEY_SALT (--api-salt).

Optional with defaults: PORT (-p, 4380), DATABASE_TYPE (-t, postgres),
CHECK_INTERVAL (1h), CHECK_WORKERS (8), PROBE_TIMEOUT (10s),
WEBHOOK_ATTEMPTS (3), WEBHOOK_BACKOFF (2s), ALERT_THRESHOLDS (30,14,7,1).
*/
package cliparse
