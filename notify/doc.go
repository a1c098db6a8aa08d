// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify decides when threshold alerts fire and delivers them.

Crossed maps a certificate's remaining lifetime to the tightest configured
boundary (default 30/14/7/1 days). The checker creates one alert per
(certificate, threshold, not_after), so each boundary fires once per issued
certificate and a renewal re-arms them all.

Notifier posts signed JSON payloads to the tenant's webhook URL with bounded
retries, recording every attempt in webhook_delivery.
*/
package notify
