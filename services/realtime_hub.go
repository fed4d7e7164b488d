package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	UserID string
	Conn   *websocket.Conn

	mu sync.Mutex // one writer at a time on Conn
}

// Write sends one message, serializing writers on the connection.
func (c *WSClient) Write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// RealtimeHub fans journal snapshots out to the user's connected dashboard
// clients. It doubles as a SyncTarget so live dashboards update on the same
// trigger as the remote mirror.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

func (h *RealtimeHub) Publish(_ context.Context, snap SyncSnapshot) error {
	msg, _ := json.Marshal(map[string]any{
		"kind":    "journal.updated",
		"journal": snap,
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[snap.UserID] {
		_ = c.Write(websocket.TextMessage, msg)
	}
	return nil
}
