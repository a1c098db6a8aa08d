// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checker

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func splitTestServer(t *testing.T, url string) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(url, "https://"))
	if err != nil {
		t.Fatalf("Failed to parse test server URL: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func TestProbe_SelfSignedServer(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	host, port := splitTestServer(t, ts.URL)

	res, err := Probe(context.Background(), host, port, 5*time.Second)
	if err != nil {
		t.Fatalf("Probe should succeed against a live TLS server: %v", err)
	}

	// Metadata comes through even though the chain does not verify
	if res.NotAfter.IsZero() {
		t.Error("Expected NotAfter to be populated")
	}
	if res.Issuer == "" {
		t.Error("Expected an issuer")
	}
	if res.Serial == "" {
		t.Error("Expected a serial")
	}
	if res.VerifyError == "" {
		t.Error("Self-signed chain should fail verification")
	}
	if res.Latency <= 0 {
		t.Error("Expected a positive latency")
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	// Grab a port and close it so nothing is listening
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	_, err = Probe(context.Background(), "127.0.0.1", port, 2*time.Second)
	if err == nil {
		t.Fatal("Expected an error for a closed port")
	}
}

func TestProbe_NotTLS(t *testing.T) {
	// A plain HTTP server; the handshake must fail
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	host, portStr, _ := net.SplitHostPort(strings.TrimPrefix(ts.URL, "http://"))
	port, _ := strconv.Atoi(portStr)

	_, err := Probe(context.Background(), host, port, 2*time.Second)
	if err == nil {
		t.Fatal("Expected an error probing a non-TLS port")
	}
}

func TestProbe_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Probe(ctx, "example.com", 443, 5*time.Second)
	if err == nil {
		t.Fatal("Expected an error with a cancelled context")
	}
}
