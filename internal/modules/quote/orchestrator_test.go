// README: Orchestrator tests (auto-quote flow, stale quotes, submit gating).
package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"courierdash/internal/modules/draft"
	"courierdash/internal/types"
)

type stubClient struct {
	quote      Quote
	quoteErr   error
	quoteCalls int
	submitID   types.ID
	submitErr  error
}

func (c *stubClient) Quote(_ context.Context, _ draft.OrderDraft) (Quote, error) {
	c.quoteCalls++
	return c.quote, c.quoteErr
}

func (c *stubClient) Submit(_ context.Context, _ draft.OrderDraft) (types.ID, error) {
	return c.submitID, c.submitErr
}

func completeDraft() draft.OrderDraft {
	start := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	mk := func(kind draft.PartyKind) draft.PartySection {
		p := draft.PartySection{
			Kind:    kind,
			Phone:   "2125551234",
			Name:    "Ada",
			Address: draft.Address{Street1: "123 Main St", Zip: "11201", Lat: "40.7", Lon: "-73.9"},
		}
		if kind == draft.PartyDelivery {
			p.Items = []draft.Item{{Description: "Box", Quantity: 2}}
			p.SizeCategory = draft.SizeSmall
		}
		return p
	}
	return draft.OrderDraft{
		Status:   draft.StatusNewOrder,
		Pickup:   mk(draft.PartyPickup),
		Delivery: mk(draft.PartyDelivery),
		Timeframe: draft.TimeframeSelection{
			Service: "three_hour",
			Start:   start,
			End:     start.Add(3 * time.Hour),
		},
	}
}

// A draft becoming complete moves Idle -> Quoting -> Quoted without user
// action; a subsequent mutation re-quotes.
func TestAutoQuoteAndRequote(t *testing.T) {
	c := &stubClient{quote: Quote{Price: types.Money{Amount: 1250}, Tip: types.Money{Amount: 300}}}
	o := NewOrchestrator(c)
	ctx := context.Background()

	incomplete := completeDraft()
	incomplete.Pickup.Phone = ""
	o.Sync(ctx, incomplete)
	if o.State() != StateIdle {
		t.Fatalf("state = %s, want idle", o.State())
	}

	d := completeDraft()
	o.Sync(ctx, d)
	if o.State() != StateQuoted {
		t.Fatalf("state = %s, want quoted", o.State())
	}
	if q, ok := o.Current(); !ok || q.Price.Amount != 1250 {
		t.Fatalf("quote = %+v ok=%v", q, ok)
	}
	if c.quoteCalls != 1 {
		t.Fatalf("quoteCalls = %d", c.quoteCalls)
	}

	// Same draft again: the quote is idempotent, no extra request.
	o.Sync(ctx, d)
	if c.quoteCalls != 1 {
		t.Errorf("unchanged draft re-quoted, calls = %d", c.quoteCalls)
	}

	// Mutation: the stale quote is dropped and a fresh one requested.
	d.Delivery.TipCents = 500
	o.Sync(ctx, d)
	if c.quoteCalls != 2 {
		t.Errorf("mutated draft did not re-quote, calls = %d", c.quoteCalls)
	}
	if o.State() != StateQuoted {
		t.Errorf("state = %s", o.State())
	}
}

func TestQuoteFailureIsNotRetriedAutomatically(t *testing.T) {
	c := &stubClient{quoteErr: errors.New("pricing unavailable")}
	o := NewOrchestrator(c)
	ctx := context.Background()
	d := completeDraft()

	o.Sync(ctx, d)
	if o.State() != StateQuoteFailed || o.Err() == nil {
		t.Fatalf("state = %s err = %v", o.State(), o.Err())
	}
	o.Sync(ctx, d)
	if c.quoteCalls != 1 {
		t.Errorf("failed quote auto-retried, calls = %d", c.quoteCalls)
	}

	// Manual retry path: acknowledge, then sync again.
	c.quoteErr = nil
	o.Reacknowledge()
	o.Sync(ctx, d)
	if o.State() != StateQuoted || c.quoteCalls != 2 {
		t.Errorf("state = %s calls = %d", o.State(), c.quoteCalls)
	}
}

func TestSubmitOnlyFromQuoted(t *testing.T) {
	c := &stubClient{submitID: "ord_42"}
	o := NewOrchestrator(c)
	ctx := context.Background()
	d := completeDraft()

	if _, err := o.Submit(ctx, d); err != ErrNotQuoted {
		t.Fatalf("submit before quote: err = %v, want ErrNotQuoted", err)
	}

	o.Sync(ctx, d)
	id, err := o.Submit(ctx, d)
	if err != nil || id != "ord_42" {
		t.Fatalf("submit: id=%q err=%v", id, err)
	}
	if o.State() != StateSubmitted {
		t.Errorf("state = %s", o.State())
	}
}

func TestSubmitIncompleteDraftIsNoop(t *testing.T) {
	o := NewOrchestrator(&stubClient{})
	d := completeDraft()
	d.Delivery.Items = nil
	if _, err := o.Submit(context.Background(), d); err != ErrNotReady {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}

func TestSubmitStaleQuoteRejected(t *testing.T) {
	c := &stubClient{submitID: "ord_42"}
	o := NewOrchestrator(c)
	ctx := context.Background()
	d := completeDraft()
	o.Sync(ctx, d)

	mutated := d
	mutated.Delivery.TipCents = 999
	if _, err := o.Submit(ctx, mutated); err != ErrNotQuoted {
		t.Errorf("submit with mutated draft: err = %v, want ErrNotQuoted", err)
	}
}

func TestSubmitFailureSurfacesServerMessage(t *testing.T) {
	c := &stubClient{submitErr: errors.New("pickup window no longer available")}
	o := NewOrchestrator(c)
	ctx := context.Background()
	d := completeDraft()
	o.Sync(ctx, d)

	_, err := o.Submit(ctx, d)
	if err == nil || err.Error() != "pickup window no longer available" {
		t.Fatalf("err = %v", err)
	}
	if o.State() != StateSubmitFailed {
		t.Fatalf("state = %s", o.State())
	}

	// Explicit retry decision: back to Quoted, then submit again.
	c.submitErr = nil
	o.Reacknowledge()
	if o.State() != StateQuoted {
		t.Fatalf("state = %s after reacknowledge", o.State())
	}
	if id, err := o.Submit(ctx, d); err != nil || id != "ord_42" {
		t.Errorf("retry submit: id=%q err=%v", id, err)
	}
}

func TestDraftHashStable(t *testing.T) {
	d := completeDraft()
	if DraftHash(d) != DraftHash(d) {
		t.Error("hash not stable")
	}
	m := d
	m.Delivery.TipCents = 1
	if DraftHash(d) == DraftHash(m) {
		t.Error("hash did not change with draft")
	}
}
