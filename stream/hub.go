// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type event struct {
	tenantID string
	data     []byte
}

// Hub fans alert events out to the WebSocket connections of the tenant they
// belong to. Connections from different tenants never see each other's events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]string // conn -> tenant ID
	events  chan event
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		events:  make(chan event, 256),
	}
}

// Broadcast queues v for every connection belonging to the tenant.
// Drops the event if the queue is full rather than blocking the caller.
func (h *Hub) Broadcast(tenantID string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal stream event", "error", err)
		return
	}

	select {
	case h.events <- event{tenantID: tenantID, data: data}:
	default:
		slog.Warn("stream event dropped, queue full", "tenant_id", tenantID)
	}
}

// Run starts the hub's broadcast loop. Call once, in a goroutine.
func (h *Hub) Run() {
	for ev := range h.events {
		h.mu.Lock()
		for conn, tenantID := range h.clients {
			if tenantID != ev.tenantID {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ev.data); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

// Serve upgrades the request to a WebSocket and holds it open for the tenant
// until the peer disconnects. Callers authenticate before calling Serve.
func (h *Hub) Serve(tenantID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = tenantID
	h.mu.Unlock()

	slog.Info("stream client connected", "tenant_id", tenantID)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		slog.Info("stream client disconnected", "tenant_id", tenantID)
	}()

	// Keep the connection alive; clients do not send messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// ClientCount reports connected clients for a tenant
func (h *Hub) ClientCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, id := range h.clients {
		if id == tenantID {
			n++
		}
	}
	return n
}
