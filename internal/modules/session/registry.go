// README: In-memory registry of active form sessions.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Registry tracks the live form sessions. A session exists from creation until
// the operator navigates away or the order is submitted.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*Session)}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[s.ID()] = s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	return s, ok
}

// Remove drops a session, ending its draft lifecycle.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}

// NewID generates a session identifier.
func NewID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
