// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package checker probes monitored hosts over TLS and records the results.

Probe performs the handshake and extracts certificate metadata, verifying
the chain manually so broken chains still report expiry dates. Service
schedules periodic scans across a worker pool, persists cert_check rows,
and raises threshold alerts through the notify and stream packages.
*/
package checker
