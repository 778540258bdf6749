// README: Form session; composes draft store, slot resolver, quoting, and autofill.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"courierdash/internal/backend"
	"courierdash/internal/modules/customer"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/quote"
	"courierdash/internal/modules/timeframe"
	"courierdash/internal/types"
)

// ErrSlotUnavailable is returned when a tier or slot choice does not exist in
// the resolved slot lists.
var ErrSlotUnavailable = errors.New("no slot available for service tier")

// Deps are the collaborators one session needs.
type Deps struct {
	Slots     timeframe.SlotFetcher
	Quotes    quote.Client
	Customers *customer.Service
}

// Snapshot is the full derived state handed to the dashboard after each
// operation.
type Snapshot struct {
	ID          string                `json:"id"`
	Draft       draft.OrderDraft      `json:"draft"`
	Pickup      draft.SectionReport   `json:"pickup"`
	Delivery    draft.SectionReport   `json:"delivery"`
	Timeframe   timeframe.State       `json:"timeframe_state"`
	Tiers       []timeframe.TierSlots `json:"tiers,omitempty"`
	QuoteState  quote.State           `json:"quote_state"`
	Quote       quote.Quote           `json:"quote"`
	Submittable bool                  `json:"submittable"`
	Date        string                `json:"date"`
}

// Session owns one order draft being composed by one operator. All mutations
// funnel through it sequentially; the mutex serializes interleaved HTTP
// callbacks the way the original single-threaded form did.
type Session struct {
	mu        sync.Mutex
	id        string
	store     *draft.Store
	resolver  *timeframe.Resolver
	quotes    *quote.Orchestrator
	customers *customer.Service
	autofill  bool
	date      string
	now       func() time.Time

	// Address fingerprints at hydration time; a change forces real slot
	// resolution even on an edit session.
	origPickupAddr   string
	origDeliveryAddr string
}

// New creates a session holding an empty new-order draft. defaults are the
// source records sections reset to (store defaults, retail prefill).
func New(id string, deps Deps, defaults draft.Defaults, autofill bool) *Session {
	s := &Session{
		id:        id,
		store:     draft.NewStore(defaults),
		resolver:  timeframe.NewResolver(deps.Slots),
		quotes:    quote.NewOrchestrator(deps.Quotes),
		customers: deps.Customers,
		autofill:  autofill,
		now:       time.Now,
	}
	d := s.store.Draft()
	s.origPickupAddr = d.Pickup.Address.Fingerprint()
	s.origDeliveryAddr = d.Delivery.Address.Fingerprint()
	return s
}

// HydrateFromOrder creates an edit session from a fetched order record.
func HydrateFromOrder(id string, deps Deps, rec backend.OrderRecord, autofill bool) *Session {
	pickup := draft.Normalize(rec.Pickup, draft.PartyPickup)
	delivery := draft.Normalize(rec.Delivery, draft.PartyDelivery)
	d := draft.OrderDraft{
		Status:   rec.Status,
		Pickup:   pickup,
		Delivery: delivery,
		OrderID:  rec.OrderID,
		Timeframe: draft.TimeframeSelection{
			Service: rec.Timeframe.Service,
			Start:   rec.Timeframe.StartTime,
			End:     rec.Timeframe.EndTime,
		},
	}
	s := &Session{
		id:        id,
		store:     draft.Hydrate(d, draft.Defaults{Pickup: rec.Pickup, Delivery: rec.Delivery}),
		resolver:  timeframe.NewResolver(deps.Slots),
		quotes:    quote.NewOrchestrator(deps.Quotes),
		customers: deps.Customers,
		autofill:  autofill,
		now:       time.Now,
	}
	s.origPickupAddr = pickup.Address.Fingerprint()
	s.origDeliveryAddr = delivery.Address.Fingerprint()
	if !rec.Timeframe.StartTime.IsZero() {
		s.date = rec.Timeframe.StartTime.Format("01-02-2006")
	}
	return s
}

func (s *Session) ID() string { return s.id }

// UpdateParty applies a patch to one section, runs the customer autofill when
// a complete phone was entered, and recomputes derived state.
func (s *Session) UpdateParty(ctx context.Context, kind draft.PartyKind, patch draft.PartyPatch) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.UpdateParty(kind, patch); err != nil {
		return s.snapshotLocked(), err
	}
	if patch.Phone != nil {
		s.autofillLocked(ctx, kind)
	}
	s.recomputeLocked(ctx)
	return s.snapshotLocked(), nil
}

// UpdateTimeframe applies a timeframe patch (slot choice, extensions,
// ready-by/deadline) and recomputes.
func (s *Session) UpdateTimeframe(ctx context.Context, patch draft.TimeframePatch) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.UpdateTimeframe(patch); err != nil {
		return s.snapshotLocked(), err
	}
	s.recomputeLocked(ctx)
	return s.snapshotLocked(), nil
}

// SetDate changes the service date and re-resolves slots for it.
func (s *Session) SetDate(ctx context.Context, date string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.recomputeLocked(ctx)
	return s.snapshotLocked(), nil
}

// SetService switches the tier and re-applies the first slot of that tier.
// An explicit slot pick goes through SelectSlot instead.
func (s *Session) SetService(ctx context.Context, service string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := timeframe.FirstSlotOf(s.resolver.Tiers(), service)
	if !ok {
		return s.snapshotLocked(), ErrSlotUnavailable
	}
	if err := s.applySlotLocked(service, slot, false); err != nil {
		return s.snapshotLocked(), err
	}
	s.recomputeLocked(ctx)
	return s.snapshotLocked(), nil
}

// SelectSlot records an explicit operator slot choice.
func (s *Session) SelectSlot(ctx context.Context, service string, start time.Time) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tier := range s.resolver.Tiers() {
		if tier.Service != service {
			continue
		}
		for _, slot := range tier.Slots {
			if slot.Start.Equal(start) {
				if err := s.applySlotLocked(service, slot, true); err != nil {
					return s.snapshotLocked(), err
				}
				s.recomputeLocked(ctx)
				return s.snapshotLocked(), nil
			}
		}
	}
	return s.snapshotLocked(), ErrSlotUnavailable
}

// ResetParty restores a section to its source defaults.
func (s *Session) ResetParty(ctx context.Context, kind draft.PartyKind) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ResetParty(kind)
	s.recomputeLocked(ctx)
	return s.snapshotLocked()
}

// Submit books the order. On success the caller navigates to tracking and the
// session is over.
func (s *Session) Submit(ctx context.Context) (types.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotes.Submit(ctx, s.store.Draft())
}

// Reacknowledge clears a surfaced quote/submit failure after the operator
// dismissed it.
func (s *Session) Reacknowledge(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes.Reacknowledge()
	s.recomputeLocked(ctx)
	return s.snapshotLocked()
}

// Snapshot returns the current derived state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// autofillLocked looks the customer up by the section's phone and prefills the
// section on a hit. Responses for a phone the operator has since changed are
// discarded (last write wins per phone).
func (s *Session) autofillLocked(ctx context.Context, kind draft.PartyKind) {
	if !s.autofill || s.customers == nil {
		return
	}
	d := s.store.Draft()
	sec := d.Pickup
	if kind == draft.PartyDelivery {
		sec = d.Delivery
	}
	if !draft.PhoneComplete(sec.Phone) {
		return
	}
	phone := sec.Phone

	rec, ok, err := s.customers.Lookup(ctx, phone)
	if err != nil || !ok {
		return
	}

	// The lookup suspended; ignore the result if the phone moved on.
	cur := s.store.Draft()
	curPhone := cur.Pickup.Phone
	if kind == draft.PartyDelivery {
		curPhone = cur.Delivery.Phone
	}
	if curPhone != phone {
		return
	}

	p := draft.Normalize(rec, kind)
	p.Phone = phone
	p.PhoneFormatted = draft.FormatPhone(phone)
	patch := draft.PartyPatch{
		CustomerID: &p.CustomerID,
		Name:       &p.Name,
		Note:       &p.Note,
		Apt:        &p.Apt,
		AccessCode: &p.AccessCode,
		Address:    &p.Address,
	}
	// Address prefill is skipped once addresses are locked; contact fields may
	// still apply on their own.
	if !draft.CanEditAddress(cur.Status) {
		patch.Address = nil
	}
	_ = s.store.UpdateParty(kind, patch)
}

// recomputeLocked reconciles the resolver and the quote orchestrator with the
// draft after any mutation.
func (s *Session) recomputeLocked(ctx context.Context) {
	d := s.store.Draft()

	if !draft.IsCompleted(d.Pickup) || !draft.IsCompleted(d.Delivery) {
		s.resolver.Reset()
		s.quotes.Sync(ctx, d)
		return
	}

	date := s.dateLocked()
	addrChanged := d.Pickup.Address.Fingerprint() != s.origPickupAddr ||
		d.Delivery.Address.Fingerprint() != s.origDeliveryAddr

	if s.resolver.NeedsResolve(d, date) {
		if d.OrderID != "" && d.Status != draft.StatusNewOrder && !addrChanged && d.Timeframe.Chosen() {
			// Editing an existing order with unchanged addresses: keep the
			// persisted timeframe as a synthetic resolved slot.
			s.resolver.SetSynthetic(d, date)
		} else if draft.CanEditTimeframe(d.Status) {
			tiers, current, err := s.resolver.Resolve(ctx, d, date)
			if current && err == nil {
				s.applyDefaultSlotLocked(d, tiers, addrChanged)
			}
		}
	}

	s.quotes.Sync(ctx, s.store.Draft())
}

// applyDefaultSlotLocked applies the deterministic auto-selection after a
// fresh resolution: on a new order, or whenever addresses changed since the
// original fetch, unless the operator already picked a slot by hand.
func (s *Session) applyDefaultSlotLocked(d draft.OrderDraft, tiers []timeframe.TierSlots, addrChanged bool) {
	if d.Timeframe.UserPicked && !addrChanged {
		return
	}
	if d.Status != draft.StatusNewOrder && !addrChanged {
		return
	}
	service, slot, ok := timeframe.DefaultSelection(tiers)
	if !ok {
		return
	}
	_ = s.applySlotLocked(service, slot, false)
}

func (s *Session) applySlotLocked(service string, slot timeframe.Slot, userPicked bool) error {
	up := userPicked
	return s.store.UpdateTimeframe(draft.TimeframePatch{
		Service:        &service,
		Start:          &slot.Start,
		End:            &slot.End,
		PickupExtMin:   &slot.PickupExtMin,
		DeliveryExtMin: &slot.DeliveryExtMin,
		UserPicked:     &up,
	})
}

func (s *Session) dateLocked() string {
	if s.date != "" {
		return s.date
	}
	return s.now().Format("01-02-2006")
}

func (s *Session) snapshotLocked() Snapshot {
	d := s.store.Draft()
	q, _ := s.quotes.Current()
	return Snapshot{
		ID:          s.id,
		Draft:       d,
		Pickup:      draft.EvaluateParty(d.Pickup),
		Delivery:    draft.EvaluateParty(d.Delivery),
		Timeframe:   s.resolver.State(),
		Tiers:       s.resolver.Tiers(),
		QuoteState:  s.quotes.State(),
		Quote:       q,
		Submittable: draft.Submittable(d),
		Date:        s.dateLocked(),
	}
}
