// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package stream broadcasts alert events to per-tenant WebSocket clients.
package stream
