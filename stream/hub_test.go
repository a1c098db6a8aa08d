// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testEvent struct {
	Domain string `json:"domain"`
}

// dialHub connects a websocket client as the given tenant
func dialHub(t *testing.T, hub *Hub, tenantID string) (*websocket.Conn, func()) {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(tenantID, w, r)
	}))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("Failed to dial hub: %v", err)
	}

	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func waitForClients(t *testing.T, hub *Hub, tenantID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(tenantID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %d clients of %s", want, tenantID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesTenant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn, cleanup := dialHub(t, hub, "tenant-a")
	defer cleanup()

	waitForClients(t, hub, "tenant-a", 1)

	hub.Broadcast("tenant-a", testEvent{Domain: "example.com"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var ev testEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if ev.Domain != "example.com" {
		t.Errorf("Expected domain example.com, got %s", ev.Domain)
	}
}

func TestBroadcastIsTenantScoped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	connA, cleanupA := dialHub(t, hub, "tenant-a")
	defer cleanupA()
	connB, cleanupB := dialHub(t, hub, "tenant-b")
	defer cleanupB()

	waitForClients(t, hub, "tenant-a", 1)
	waitForClients(t, hub, "tenant-b", 1)

	hub.Broadcast("tenant-a", testEvent{Domain: "a-only.example.com"})

	// Tenant A receives it
	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := connA.ReadMessage(); err != nil {
		t.Fatalf("Tenant A should receive the event: %v", err)
	}

	// Tenant B must not
	connB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := connB.ReadMessage(); err == nil {
		t.Error("Tenant B received an event meant for tenant A")
	}
}

func TestClientCountTracksDisconnects(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn, cleanup := dialHub(t, hub, "tenant-c")

	waitForClients(t, hub, "tenant-c", 1)

	conn.Close()
	cleanup()

	waitForClients(t, hub, "tenant-c", 0)
}
