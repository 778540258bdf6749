// README: Draft store; invariant-preserving updates over the active order draft.
package draft

import (
	"errors"
	"time"
)

var (
	// ErrLocked is returned when an update targets a section whose fields are
	// not editable under the draft's current status. The store itself guards
	// this so programmatic misuse cannot bypass disabled inputs.
	ErrLocked = errors.New("section not editable in current status")
)

// PartyPatch is a shallow top-level merge into a party section. Nil fields are
// left untouched. Whenever Phone, Name, or Address is present the merge clears
// CustomerID unless the caller explicitly re-supplies one: a customer reference
// is only valid while contact fields exactly match the referenced customer.
type PartyPatch struct {
	CustomerID      *string       `json:"customer_id,omitempty"`
	Phone           *string       `json:"phone,omitempty"`
	Name            *string       `json:"name,omitempty"`
	Note            *string       `json:"note,omitempty"`
	Apt             *string       `json:"apt,omitempty"`
	AccessCode      *string       `json:"access_code,omitempty"`
	Address         *Address      `json:"address,omitempty"`
	Verification    *Verification `json:"verification,omitempty"`
	Items           *[]Item       `json:"items,omitempty"`
	TipCents        *int64        `json:"tip_cents,omitempty"`
	SizeCategory    *SizeCategory `json:"size_category,omitempty"`
	UseMeasurements *bool         `json:"use_measurements,omitempty"`
	ExternalOrderID *string       `json:"external_order_id,omitempty"`
}

func (p PartyPatch) touchesIdentity() bool {
	return p.Phone != nil || p.Name != nil || p.Address != nil
}

func (p PartyPatch) touchesAddress() bool {
	return p.Address != nil
}

func (p PartyPatch) touchesContact() bool {
	return p.CustomerID != nil || p.Phone != nil || p.Name != nil || p.Note != nil || p.Apt != nil ||
		p.AccessCode != nil || p.Verification != nil || p.Items != nil ||
		p.TipCents != nil || p.SizeCategory != nil || p.UseMeasurements != nil ||
		p.ExternalOrderID != nil
}

// TimeframePatch is a shallow merge into the timeframe selection. ReadyBy and
// Deadline are clamped silently against the slot window on apply.
type TimeframePatch struct {
	Service          *string    `json:"service,omitempty"`
	Start            *time.Time `json:"start,omitempty"`
	End              *time.Time `json:"end,omitempty"`
	PickupExtMin     *int       `json:"pickup_ext_min,omitempty"`
	DeliveryExtMin   *int       `json:"delivery_ext_min,omitempty"`
	PickupReadyBy    *time.Time `json:"pickup_ready_by,omitempty"`
	DeliveryDeadline *time.Time `json:"delivery_deadline,omitempty"`
	UserPicked       *bool      `json:"user_picked,omitempty"`
}

// Defaults are the originating source records a section resets to: store or
// customer defaults captured at hydration time, never hardcoded blanks.
type Defaults struct {
	Pickup   RawRecord
	Delivery RawRecord
}

// Store owns the mutable order draft for one form session. It is a
// single-writer structure; the session serializes access.
type Store struct {
	draft    OrderDraft
	defaults Defaults
}

// NewStore creates a store holding an empty new-order draft.
func NewStore(defaults Defaults) *Store {
	s := &Store{defaults: defaults}
	s.draft = OrderDraft{
		Status:   StatusNewOrder,
		Pickup:   Normalize(defaults.Pickup, PartyPickup),
		Delivery: Normalize(defaults.Delivery, PartyDelivery),
	}
	return s
}

// Hydrate creates a store from a fetched order or retail-default record.
func Hydrate(d OrderDraft, defaults Defaults) *Store {
	return &Store{draft: d, defaults: defaults}
}

// Draft returns a copy of the current draft.
func (s *Store) Draft() OrderDraft {
	d := s.draft
	d.Pickup.Items = copyItems(d.Pickup.Items)
	d.Delivery.Items = copyItems(d.Delivery.Items)
	return d
}

// UpdateParty merges the patch into the named section. Updates against a
// locked section return ErrLocked and change nothing. A phone change resets
// the section to its defaults first (every other contact field is assumed
// stale once the identity anchor changes); a locked address survives the
// reset untouched.
func (s *Store) UpdateParty(kind PartyKind, patch PartyPatch) error {
	if patch.touchesAddress() && !CanEditAddress(s.draft.Status) {
		return ErrLocked
	}
	if patch.touchesContact() && !CanEditContact(s.draft.Status, kind) {
		return ErrLocked
	}

	sec := s.section(kind)

	if patch.Phone != nil {
		if next := DigitsOnly(*patch.Phone); next != sec.Phone {
			committed := sec.Address
			*sec = Normalize(s.defaultsFor(kind), kind)
			if !CanEditAddress(s.draft.Status) {
				sec.Address = committed
			}
		}
	}

	applyPartyPatch(sec, patch)

	if patch.touchesIdentity() && patch.CustomerID == nil {
		sec.CustomerID = ""
	}
	return nil
}

// UpdateTimeframe merges the patch into the timeframe selection, clamping
// ready-by and deadline into the slot window.
func (s *Store) UpdateTimeframe(patch TimeframePatch) error {
	if !CanEditTimeframe(s.draft.Status) {
		return ErrLocked
	}
	t := &s.draft.Timeframe
	if patch.Service != nil {
		t.Service = *patch.Service
	}
	if patch.Start != nil {
		t.Start = *patch.Start
	}
	if patch.End != nil {
		t.End = *patch.End
	}
	if patch.PickupExtMin != nil {
		t.PickupExtMin = *patch.PickupExtMin
	}
	if patch.DeliveryExtMin != nil {
		t.DeliveryExtMin = *patch.DeliveryExtMin
	}
	if patch.PickupReadyBy != nil {
		v := clamp(*patch.PickupReadyBy, t.Start.Add(-time.Duration(t.PickupExtMin)*time.Minute), t.Start)
		t.PickupReadyBy = &v
	}
	if patch.DeliveryDeadline != nil {
		v := clamp(*patch.DeliveryDeadline, t.End, t.End.Add(time.Duration(t.DeliveryExtMin)*time.Minute))
		t.DeliveryDeadline = &v
	}
	if patch.UserPicked != nil {
		t.UserPicked = *patch.UserPicked
	}
	// A slot change invalidates extension timestamps outside the new window.
	if patch.Start != nil && t.PickupReadyBy != nil {
		v := clamp(*t.PickupReadyBy, t.Start.Add(-time.Duration(t.PickupExtMin)*time.Minute), t.Start)
		t.PickupReadyBy = &v
	}
	if patch.End != nil && t.DeliveryDeadline != nil {
		v := clamp(*t.DeliveryDeadline, t.End, t.End.Add(time.Duration(t.DeliveryExtMin)*time.Minute))
		t.DeliveryDeadline = &v
	}
	return nil
}

// ResetParty restores the section to defaults derived from its originating
// source record.
func (s *Store) ResetParty(kind PartyKind) {
	*s.section(kind) = Normalize(s.defaultsFor(kind), kind)
}

// ReplaceDraft swaps the whole draft, e.g. when hydrating an edit session.
func (s *Store) ReplaceDraft(d OrderDraft) {
	s.draft = d
}

// SetStatus updates the lifecycle status, which in turn gates editability.
func (s *Store) SetStatus(st Status) {
	s.draft.Status = st
}

func (s *Store) section(kind PartyKind) *PartySection {
	if kind == PartyPickup {
		return &s.draft.Pickup
	}
	return &s.draft.Delivery
}

func (s *Store) defaultsFor(kind PartyKind) RawRecord {
	if kind == PartyPickup {
		return s.defaults.Pickup
	}
	return s.defaults.Delivery
}

func applyPartyPatch(sec *PartySection, patch PartyPatch) {
	if patch.CustomerID != nil {
		sec.CustomerID = *patch.CustomerID
	}
	if patch.Phone != nil {
		sec.Phone = DigitsOnly(*patch.Phone)
		sec.PhoneFormatted = FormatPhone(sec.Phone)
	}
	if patch.Name != nil {
		sec.Name = *patch.Name
	}
	if patch.Note != nil {
		sec.Note = *patch.Note
	}
	if patch.Apt != nil {
		sec.Apt = *patch.Apt
	}
	if patch.AccessCode != nil {
		sec.AccessCode = *patch.AccessCode
	}
	if patch.Address != nil {
		sec.Address = *patch.Address
	}
	if patch.Verification != nil {
		v := *patch.Verification
		if sec.Kind == PartyPickup {
			v.Recipient = false
			v.Signature = false
		}
		sec.Verification = v
	}
	if patch.Items != nil {
		sec.Items = copyItems(*patch.Items)
	}
	if patch.TipCents != nil {
		sec.TipCents = *patch.TipCents
	}
	if patch.SizeCategory != nil {
		sec.SizeCategory = *patch.SizeCategory
	}
	if patch.UseMeasurements != nil {
		sec.UseMeasurements = *patch.UseMeasurements
	}
	if patch.ExternalOrderID != nil {
		sec.ExternalOrderID = *patch.ExternalOrderID
	}
}

func copyItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func clamp(v, lo, hi time.Time) time.Time {
	if v.Before(lo) {
		return lo
	}
	if v.After(hi) {
		return hi
	}
	return v
}
