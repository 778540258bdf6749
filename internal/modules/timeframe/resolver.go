// README: Timeframe resolver; negotiates bookable slots once both sections complete.
package timeframe

import (
	"context"
	"sync"

	"courierdash/internal/modules/draft"
)

// State of the resolver for the active draft.
type State string

const (
	// StateUnavailable: pickup or delivery is incomplete; no fetch attempted.
	StateUnavailable State = "unavailable"
	// StateResolving: a slot request is in flight for the current key.
	StateResolving State = "resolving"
	// StateResolved: slots are loaded for the selected date.
	StateResolved State = "resolved"
)

// SlotFetcher asks the platform for per-tier slot lists for a draft and date.
type SlotFetcher interface {
	Slots(ctx context.Context, d draft.OrderDraft, date string) ([]TierSlots, error)
}

// Resolver caches the slot lists for the current (pickup, delivery, date) key.
// It resolves at most once per key and discards stale responses by request
// generation (last request wins; no transport-level cancellation).
type Resolver struct {
	fetch SlotFetcher

	mu    sync.Mutex
	state State
	key   string
	gen   int
	tiers []TierSlots
	err   error
}

func NewResolver(fetch SlotFetcher) *Resolver {
	return &Resolver{fetch: fetch, state: StateUnavailable}
}

// Key fingerprints the inputs that force re-resolution.
func Key(d draft.OrderDraft, date string) string {
	return d.Pickup.Address.Fingerprint() + "~" + d.Delivery.Address.Fingerprint() + "~" + date
}

// State returns the current resolver state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Tiers returns the resolved slot lists, valid only in StateResolved.
func (r *Resolver) Tiers() []TierSlots {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tiers
}

// Err returns the last resolution failure, if any.
func (r *Resolver) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Reset returns the resolver to Unavailable, e.g. when a section becomes
// incomplete again.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateUnavailable
	r.key = ""
	r.tiers = nil
	r.err = nil
}

// NeedsResolve reports whether the draft/date pair differs from what is
// already resolved or in flight.
func (r *Resolver) NeedsResolve(d draft.OrderDraft, date string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key != Key(d, date)
}

// SetSynthetic installs a single-slot resolved state from a persisted
// timeframe, used when editing an existing order whose addresses are
// unchanged: the platform is not re-queried.
func (r *Resolver) SetSynthetic(d draft.OrderDraft, date string) {
	t := d.Timeframe
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key = Key(d, date)
	r.tiers = []TierSlots{{
		Service: t.Service,
		Slots: []Slot{{
			Start:          t.Start,
			End:            t.End,
			PickupExtMin:   t.PickupExtMin,
			DeliveryExtMin: t.DeliveryExtMin,
		}},
	}}
	r.state = StateResolved
	r.err = nil
}

// Resolve fetches slots for the draft/date key. The returned bool is false
// when the response arrived stale (a newer request started meanwhile) and was
// discarded. Responses for a superseded key never overwrite newer state.
func (r *Resolver) Resolve(ctx context.Context, d draft.OrderDraft, date string) ([]TierSlots, bool, error) {
	key := Key(d, date)

	r.mu.Lock()
	r.gen++
	myGen := r.gen
	r.key = key
	r.state = StateResolving
	r.mu.Unlock()

	tiers, err := r.fetch.Slots(ctx, d, date)

	r.mu.Lock()
	defer r.mu.Unlock()
	if myGen != r.gen {
		return nil, false, nil
	}
	if err != nil {
		r.state = StateUnavailable
		r.err = err
		return nil, true, err
	}
	r.tiers = tiers
	r.state = StateResolved
	r.err = nil
	return tiers, true, nil
}
