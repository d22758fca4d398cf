// Package realtime fans change notifications out to live client
// connections. Messages are hints only; clients refetch through sync pull,
// which stays the source of truth.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Conn is the minimal connection surface the hub needs; *websocket.Conn is
// wrapped to satisfy it, and tests substitute fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub is the connection registry: one bucket per authenticated user plus an
// anonymous bucket. It is created at process start, injected into services,
// and safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[Conn]struct{}
	conns map[Conn]string // every live conn -> user id, "" while anonymous
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		users: make(map[string]map[Conn]struct{}),
		conns: make(map[Conn]string),
		log:   log,
	}
}

// Register adds a connection, anonymously when userID is empty.
func (h *Hub) Register(c Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = userID
	if userID != "" {
		if h.users[userID] == nil {
			h.users[userID] = make(map[Conn]struct{})
		}
		h.users[userID][c] = struct{}{}
	}
}

// Authenticate re-homes a connection from the anonymous bucket to its user.
func (h *Hub) Authenticate(c Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev, ok := h.conns[c]
	if !ok || prev == userID {
		return
	}
	if prev != "" {
		h.removeFromUserLocked(c, prev)
	}
	h.conns[c] = userID
	if h.users[userID] == nil {
		h.users[userID] = make(map[Conn]struct{})
	}
	h.users[userID][c] = struct{}{}
}

// Unregister removes a connection from whichever bucket it occupies and
// drops empty user buckets so the registry does not grow unbounded.
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.conns[c]
	if !ok {
		return
	}
	delete(h.conns, c)
	if userID != "" {
		h.removeFromUserLocked(c, userID)
	}
}

func (h *Hub) removeFromUserLocked(c Conn, userID string) {
	if set, ok := h.users[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.users, userID)
		}
	}
}

// SendToUser pushes to every connection of one user. Sends are best effort;
// one dead socket never blocks the rest and never reaches the caller.
func (h *Hub) SendToUser(userID string, msg any) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	h.send(targets, msg)
}

// Broadcast pushes to every known connection, authenticated and anonymous.
func (h *Hub) Broadcast(msg any) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	h.send(targets, msg)
}

func (h *Hub) send(targets []Conn, msg any) {
	for _, c := range targets {
		if err := c.WriteJSON(msg); err != nil {
			h.log.Debug().Err(err).Msg("realtime send failed")
		}
	}
}

// NotifyTables broadcasts the sync hint after a collection-affecting write.
func (h *Hub) NotifyTables(tables ...string) {
	h.Broadcast(map[string]any{"type": "sync", "tables": tables})
}

// NotifyOrder tells the order's owner about a status transition.
func (h *Hub) NotifyOrder(userID, orderID, status string) {
	h.SendToUser(userID, map[string]any{"type": "order_update", "order_id": orderID, "status": status})
}

// ConnCount reports live connections, for diagnostics.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
