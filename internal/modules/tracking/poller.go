// README: Order tracking poller; refreshes order status at a status-tiered cadence.
package tracking

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"courierdash/internal/backend"
	"courierdash/internal/modules/draft"
)

const (
	activeInterval = 10 * time.Second
	quietInterval  = 30 * time.Second
	closedInterval = 60 * time.Second
	jitterFraction = 0.10
)

// OrderGetter fetches the current order record; the platform client satisfies
// it in production.
type OrderGetter interface {
	Order(ctx context.Context, id string) (backend.OrderRecord, error)
}

// Poller refreshes one order's record on a cadence tied to its status: tight
// while a driver is en route, relaxed once the order settles. Pause stops the
// fetching while the operator is not looking (hidden tab); Resume refreshes
// immediately.
type Poller struct {
	get     OrderGetter
	orderID string

	mu     sync.Mutex
	rec    backend.OrderRecord
	err    error
	paused bool
	wake   chan struct{}
}

func NewPoller(get OrderGetter, orderID string) *Poller {
	return &Poller{get: get, orderID: orderID, wake: make(chan struct{}, 1)}
}

// Latest returns the most recent record and the error of the last refresh.
func (p *Poller) Latest() (backend.OrderRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rec, p.err
}

func (p *Poller) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume restarts polling and triggers an immediate refresh so the operator
// never stares at stale state after returning to the tab.
func (p *Poller) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run polls until the context ends. The first refresh happens immediately.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.refresh(ctx)

		timer := time.NewTimer(p.nextInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	p.mu.Lock()
	paused := p.paused
	p.mu.Unlock()
	if paused {
		return
	}

	rec, err := p.get.Order(ctx, p.orderID)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	if err != nil {
		log.Printf("tracking: refresh %s: %v", p.orderID, err)
		return
	}
	p.rec = rec
}

func (p *Poller) nextInterval() time.Duration {
	p.mu.Lock()
	status := p.rec.Status
	p.mu.Unlock()
	return Jitter(IntervalFor(status))
}

// IntervalFor maps an order status to its polling cadence.
func IntervalFor(status draft.Status) time.Duration {
	switch status {
	case draft.StatusAssigned, draft.StatusArrivedAtPickup, draft.StatusPickedUp, draft.StatusArrivedAtDelivery:
		return activeInterval
	case draft.StatusDelivered, draft.StatusCanceled, draft.StatusReturned, draft.StatusUndeliverable:
		return closedInterval
	default:
		return quietInterval
	}
}

// Jitter spreads an interval by ±10% so a dashboard full of trackers does not
// hit the platform in lockstep.
func Jitter(d time.Duration) time.Duration {
	spread := float64(d) * jitterFraction
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
