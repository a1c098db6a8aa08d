// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Result holds what a single TLS probe learned about a host's certificate.
// VerifyError is set when the handshake succeeded but the chain does not
// verify (expired, self-signed, wrong host); metadata is still populated so
// expiry tracking works for broken chains too.
type Result struct {
	Issuer      string
	Serial      string
	NotBefore   time.Time
	NotAfter    time.Time
	DNSNames    []string
	VerifyError string
	Latency     time.Duration
}

// Probe dials host:port, completes a TLS handshake without chain
// verification, then verifies the presented chain manually so certificate
// metadata is available even when verification fails. A non-nil error means
// no certificate could be read at all (connection refused, timeout, not TLS).
func Probe(ctx context.Context, host string, port int, timeout time.Duration) (Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true, // verification happens below, against the full chain
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return Result{Latency: time.Since(start)}, fmt.Errorf("tls dial %s:%d: %w", host, port, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return Result{Latency: time.Since(start)}, errors.New("peer presented no certificates")
	}

	leaf := state.PeerCertificates[0]
	res := Result{
		Issuer:    leaf.Issuer.String(),
		Serial:    leaf.SerialNumber.Text(16),
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
		DNSNames:  leaf.DNSNames,
		Latency:   time.Since(start),
	}

	opts := x509.VerifyOptions{
		DNSName:       host,
		Intermediates: x509.NewCertPool(),
	}
	for _, c := range state.PeerCertificates[1:] {
		opts.Intermediates.AddCert(c)
	}
	if _, err := leaf.Verify(opts); err != nil {
		res.VerifyError = err.Error()
	}

	return res, nil
}
