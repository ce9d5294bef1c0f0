// Package hub fans change-feed messages out to each owner's live
// websocket connections.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	OwnerID int64
	Writer  Writer
}

type Hub struct {
	mu          sync.RWMutex
	connections map[int64]map[*Connection]struct{}
	log         *slog.Logger
}

func New(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{connections: make(map[int64]map[*Connection]struct{}), log: log}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.OwnerID] == nil {
		h.connections[conn.OwnerID] = make(map[*Connection]struct{})
	}
	h.connections[conn.OwnerID][conn] = struct{}{}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.connections[conn.OwnerID]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, conn.OwnerID)
	}
}

// Count returns the number of live connections for ownerID.
func (h *Hub) Count(ownerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[ownerID])
}

// Broadcast writes message to every connection of ownerID. Connections that
// fail a write are closed and dropped.
func (h *Hub) Broadcast(ownerID int64, message []byte) {
	h.mu.RLock()
	set := h.connections[ownerID]
	conns := make([]*Connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.log.Debug("dropping feed connection", "owner_id", ownerID)
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}

// Publish encodes v as JSON and broadcasts it to ownerID.
func (h *Hub) Publish(ownerID int64, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode feed event", "owner_id", ownerID, "error", err)
		return
	}
	h.Broadcast(ownerID, out)
}
