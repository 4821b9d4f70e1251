package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrNoSession is returned when a party has no live connection.
var ErrNoSession = errors.New("no websocket session")

// session wraps one connection. gorilla/websocket allows a single concurrent
// writer, so every write goes through the session mutex.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(msg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// Hub tracks live connections keyed by party identifier. Registration is
// idempotent: a reconnect replaces the previous session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*session)}
}

// Add registers a connection for id, closing any session it replaces.
func (h *Hub) Add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	prev := h.sessions[id]
	h.sessions[id] = &session{conn: conn}
	h.mu.Unlock()
	if prev != nil {
		prev.conn.Close()
	}
}

// Remove drops the session for id if conn is still the registered one. A
// stale disconnect must not tear down a newer session.
func (h *Hub) Remove(id string, conn *websocket.Conn) {
	h.mu.Lock()
	if s, ok := h.sessions[id]; ok && s.conn == conn {
		delete(h.sessions, id)
	}
	h.mu.Unlock()
}

// Send marshals msg as JSON to the party's connection.
func (h *Hub) Send(id string, msg any) error {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	return s.send(msg)
}

// Connected reports whether id has a live session.
func (h *Hub) Connected(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[id]
	return ok
}

// Close tears down every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.conn.Close()
		delete(h.sessions, id)
	}
}
