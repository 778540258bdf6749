// README: Session tests (autofill, end-to-end compose/quote/submit, edit sessions).
package session

import (
	"context"
	"testing"
	"time"

	"courierdash/internal/backend"
	"courierdash/internal/modules/customer"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/quote"
	"courierdash/internal/modules/timeframe"
	"courierdash/internal/types"
)

type fakePlatform struct {
	customers  map[string]draft.RawRecord
	tiers      []timeframe.TierSlots
	slotCalls  int
	quoteCalls int
	submitID   types.ID
}

func (f *fakePlatform) Customer(_ context.Context, phone string) (draft.RawRecord, error) {
	rec, ok := f.customers[phone]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return rec, nil
}

func (f *fakePlatform) Slots(_ context.Context, _ draft.OrderDraft, _ string) ([]timeframe.TierSlots, error) {
	f.slotCalls++
	return f.tiers, nil
}

func (f *fakePlatform) Quote(_ context.Context, _ draft.OrderDraft) (quote.Quote, error) {
	f.quoteCalls++
	return quote.Quote{Price: types.Money{Amount: 1250, Currency: "USD"}}, nil
}

func (f *fakePlatform) Submit(_ context.Context, _ draft.OrderDraft) (types.ID, error) {
	return f.submitID, nil
}

func newFakePlatform() *fakePlatform {
	start := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	return &fakePlatform{
		customers: map[string]draft.RawRecord{
			"2125551234": {
				"customer_id": "c_1",
				"phone":       "2125551234",
				"name":        "Ada",
				"address": map[string]any{
					"street_address_1": "123 Main St", "zip": "11201",
					"lat": "40.7", "lon": "-73.9",
				},
			},
		},
		tiers:    tierList(start),
		submitID: "ord_42",
	}
}

// tierList builds the canonical fixture: an empty one-hour tier and a
// three-hour tier with one slot.
func tierList(start time.Time) []timeframe.TierSlots {
	return []timeframe.TierSlots{
		{Service: "one_hour"},
		{Service: "three_hour", Slots: []timeframe.Slot{{
			Start: start, End: start.Add(3 * time.Hour), PickupExtMin: 30, DeliveryExtMin: 30,
		}}},
	}
}

func newTestSession(f *fakePlatform, autofill bool) *Session {
	deps := Deps{
		Slots:     f,
		Quotes:    f,
		Customers: customer.NewService(f, nil),
	}
	s := New(NewID(), deps, draft.Defaults{}, autofill)
	s.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	return s
}

func deliveryItemsPatch() draft.PartyPatch {
	items := []draft.Item{{Description: "Box", Quantity: 2}}
	size := draft.SizeSmall
	return draft.PartyPatch{Items: &items, SizeCategory: &size}
}

func phonePatch(p string) draft.PartyPatch { return draft.PartyPatch{Phone: &p} }

// Entering a known phone with autofill on prefills the section from the
// customer record and completes it.
func TestAutofillCompletesSection(t *testing.T) {
	f := newFakePlatform()
	s := newTestSession(f, true)

	snap, err := s.UpdateParty(context.Background(), draft.PartyPickup, phonePatch("2125551234"))
	if err != nil {
		t.Fatal(err)
	}
	p := snap.Draft.Pickup
	if p.CustomerID != "c_1" {
		t.Errorf("customer_id = %q", p.CustomerID)
	}
	if !p.Address.Resolved() {
		t.Errorf("address not resolved: %+v", p.Address)
	}
	if !snap.Pickup.Complete {
		t.Error("pickup should be complete after autofill")
	}
}

func TestAutofillOffLeavesSectionManual(t *testing.T) {
	f := newFakePlatform()
	s := newTestSession(f, false)
	snap, err := s.UpdateParty(context.Background(), draft.PartyPickup, phonePatch("2125551234"))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Draft.Pickup.CustomerID != "" || snap.Draft.Pickup.Name != "" {
		t.Errorf("autofill ran while disabled: %+v", snap.Draft.Pickup)
	}
}

// Completing both sections resolves slots, auto-selects the three-hour tier,
// and quotes without user action.
func TestComposeResolveQuoteFlow(t *testing.T) {
	f := newFakePlatform()
	s := newTestSession(f, true)
	ctx := context.Background()

	if _, err := s.UpdateParty(ctx, draft.PartyPickup, phonePatch("2125551234")); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Timeframe != timeframe.StateUnavailable {
		t.Fatalf("timeframe state = %s before delivery complete", snap.Timeframe)
	}

	if _, err := s.UpdateParty(ctx, draft.PartyDelivery, phonePatch("2125551234")); err != nil {
		t.Fatal(err)
	}
	snap, err := s.UpdateParty(ctx, draft.PartyDelivery, deliveryItemsPatch())
	if err != nil {
		t.Fatal(err)
	}

	if snap.Timeframe != timeframe.StateResolved {
		t.Fatalf("timeframe state = %s", snap.Timeframe)
	}
	if got := snap.Draft.Timeframe.Service; got != "three_hour" {
		t.Errorf("auto-selected tier = %q, want three_hour", got)
	}
	if snap.QuoteState != quote.StateQuoted {
		t.Errorf("quote state = %s", snap.QuoteState)
	}
	if !snap.Submittable {
		t.Error("draft should be submittable")
	}
	if f.slotCalls != 1 {
		t.Errorf("slotCalls = %d, want exactly one per key", f.slotCalls)
	}

	// Mutating the draft re-quotes.
	tip := int64(500)
	before := f.quoteCalls
	if _, err := s.UpdateParty(ctx, draft.PartyDelivery, draft.PartyPatch{TipCents: &tip}); err != nil {
		t.Fatal(err)
	}
	if f.quoteCalls != before+1 {
		t.Errorf("quoteCalls = %d, want %d", f.quoteCalls, before+1)
	}

	id, err := s.Submit(ctx)
	if err != nil || id != "ord_42" {
		t.Fatalf("submit: id=%q err=%v", id, err)
	}
}

// Changing the date re-resolves; an unchanged key does not.
func TestDateChangeForcesReresolution(t *testing.T) {
	f := newFakePlatform()
	s := newTestSession(f, true)
	ctx := context.Background()

	_, _ = s.UpdateParty(ctx, draft.PartyPickup, phonePatch("2125551234"))
	_, _ = s.UpdateParty(ctx, draft.PartyDelivery, phonePatch("2125551234"))
	if _, err := s.UpdateParty(ctx, draft.PartyDelivery, deliveryItemsPatch()); err != nil {
		t.Fatal(err)
	}
	if f.slotCalls != 1 {
		t.Fatalf("slotCalls = %d", f.slotCalls)
	}

	if _, err := s.SetDate(ctx, "09-01-2026"); err != nil {
		t.Fatal(err)
	}
	if f.slotCalls != 2 {
		t.Errorf("slotCalls = %d after date change, want 2", f.slotCalls)
	}

	// A no-op mutation does not re-fetch.
	note := "ring bell"
	if _, err := s.UpdateParty(ctx, draft.PartyPickup, draft.PartyPatch{Note: &note}); err != nil {
		t.Fatal(err)
	}
	if f.slotCalls != 2 {
		t.Errorf("slotCalls = %d after unrelated edit, want 2", f.slotCalls)
	}
}

// Editing an existing order keeps the persisted timeframe as a synthetic slot
// and never re-queries, unless an address changes.
func TestEditSessionUsesSyntheticSlot(t *testing.T) {
	f := newFakePlatform()
	deps := Deps{Slots: f, Quotes: f, Customers: customer.NewService(f, nil)}

	start := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	rec := backend.OrderRecord{
		OrderID: "ord_7",
		Status:  draft.StatusProcessing,
		Pickup: draft.RawRecord{
			"phone": "2125551234", "name": "Ada",
			"address": map[string]any{"street_address_1": "123 Main St", "zip": "11201", "lat": "40.7", "lon": "-73.9"},
		},
		Delivery: draft.RawRecord{
			"phone": "7185550000", "name": "Bea",
			"address": map[string]any{"street_address_1": "9 Other Ave", "zip": "11215", "lat": "40.66", "lon": "-73.98"},
			"items":   []any{map[string]any{"description": "Box", "quantity": 1.0}},
			"size_category": "small",
		},
	}
	rec.Timeframe.Service = "three_hour"
	rec.Timeframe.StartTime = start
	rec.Timeframe.EndTime = start.Add(3 * time.Hour)

	s := HydrateFromOrder(NewID(), deps, rec, false)
	snap := s.Snapshot()
	if !snap.Submittable {
		t.Fatalf("hydrated draft not submittable: %+v", snap.Draft)
	}

	note := "call on arrival"
	snap, err := s.UpdateParty(context.Background(), draft.PartyDelivery, draft.PartyPatch{Note: &note})
	if err != nil {
		t.Fatal(err)
	}
	if f.slotCalls != 0 {
		t.Errorf("slotCalls = %d, synthetic state should avoid the fetch", f.slotCalls)
	}
	if snap.Timeframe != timeframe.StateResolved {
		t.Errorf("timeframe state = %s", snap.Timeframe)
	}
	if len(snap.Tiers) != 1 || snap.Tiers[0].Service != "three_hour" {
		t.Errorf("tiers = %+v", snap.Tiers)
	}

	// An address change forces real resolution.
	addr := draft.Address{Street1: "55 New St", Zip: "11201", Lat: "40.71", Lon: "-73.91"}
	if _, err := s.UpdateParty(context.Background(), draft.PartyDelivery, draft.PartyPatch{Address: &addr}); err != nil {
		t.Fatal(err)
	}
	if f.slotCalls != 1 {
		t.Errorf("slotCalls = %d after address change, want 1", f.slotCalls)
	}
}

// Switching to an unknown phone resets the section and leaves it manual.
func TestUnknownPhoneLeavesSectionManual(t *testing.T) {
	f := newFakePlatform()
	s := newTestSession(f, true)
	ctx := context.Background()

	// Seed with the known phone, then immediately change to an unknown one.
	if _, err := s.UpdateParty(ctx, draft.PartyPickup, phonePatch("2125551234")); err != nil {
		t.Fatal(err)
	}
	snap, err := s.UpdateParty(ctx, draft.PartyPickup, phonePatch("7185559999"))
	if err != nil {
		t.Fatal(err)
	}
	p := snap.Draft.Pickup
	if p.Phone != "7185559999" {
		t.Fatalf("phone = %q", p.Phone)
	}
	if p.CustomerID != "" || p.Name != "" {
		t.Errorf("stale customer data survived phone change: %+v", p)
	}
}
