// README: Tracker registry; one poller per watched order.
package tracking

import (
	"context"
	"sync"

	"courierdash/internal/backend"
)

// Manager starts and stops pollers as operators open and close tracking views.
type Manager struct {
	get OrderGetter

	mu      sync.Mutex
	pollers map[string]*watched
}

type watched struct {
	poller *Poller
	cancel context.CancelFunc
}

func NewManager(get OrderGetter) *Manager {
	return &Manager{get: get, pollers: make(map[string]*watched)}
}

// Watch starts polling the order if it is not already watched and returns the
// poller either way.
func (m *Manager) Watch(orderID string) *Poller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.pollers[orderID]; ok {
		return w.poller
	}
	p := NewPoller(m.get, orderID)
	ctx, cancel := context.WithCancel(context.Background())
	m.pollers[orderID] = &watched{poller: p, cancel: cancel}
	go p.Run(ctx)
	return p
}

// Get returns the poller for an order, if it is being watched.
func (m *Manager) Get(orderID string) (*Poller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.pollers[orderID]
	if !ok {
		return nil, false
	}
	return w.poller, true
}

// Unwatch stops the order's poller.
func (m *Manager) Unwatch(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.pollers[orderID]; ok {
		w.cancel()
		delete(m.pollers, orderID)
	}
}

// Close stops every poller.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.pollers {
		w.cancel()
		delete(m.pollers, id)
	}
}

var _ OrderGetter = (*backend.Client)(nil)
