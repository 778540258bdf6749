// README: Quote/submit orchestrator; prices the draft and books the order.
package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"courierdash/internal/modules/draft"
	"courierdash/internal/types"
)

type State string

const (
	StateIdle         State = "idle"
	StateQuoting      State = "quoting"
	StateQuoted       State = "quoted"
	StateSubmitting   State = "submitting"
	StateSubmitted    State = "submitted"
	StateQuoteFailed  State = "quote_failed"
	StateSubmitFailed State = "submit_failed"
)

var (
	ErrNotQuoted = errors.New("draft is not quoted")
	ErrNotReady  = errors.New("draft is not submittable")
)

// Quote is the platform's price for the current draft.
type Quote struct {
	Price types.Money `json:"price"`
	Tip   types.Money `json:"tip"`
}

// Client performs the pricing and booking calls. Quote is a read and may be
// retried by the transport; Submit is a mutation and never is.
type Client interface {
	Quote(ctx context.Context, d draft.OrderDraft) (Quote, error)
	Submit(ctx context.Context, d draft.OrderDraft) (types.ID, error)
}

// Orchestrator watches draft completeness and keeps at most one current quote.
// Any mutation after Quoted re-quotes; a stale quote is never presented as
// current (responses are keyed by the draft hash they priced).
type Orchestrator struct {
	client Client

	mu    sync.Mutex
	state State
	hash  string
	quote Quote
	err   error
}

func NewOrchestrator(client Client) *Orchestrator {
	return &Orchestrator{client: client, state: StateIdle}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the quote, valid only in StateQuoted.
func (o *Orchestrator) Current() (Quote, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.quote, o.state == StateQuoted
}

func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Sync reconciles the orchestrator with the draft. Incomplete drafts drop to
// Idle. A complete draft whose hash is already quoted keeps its quote;
// otherwise a fresh quote is requested (Quoting), and the response is applied
// only if the draft hash has not moved on meanwhile.
func (o *Orchestrator) Sync(ctx context.Context, d draft.OrderDraft) {
	if !draft.Submittable(d) {
		o.mu.Lock()
		if o.state != StateSubmitting && o.state != StateSubmitted {
			o.state = StateIdle
			o.hash = ""
			o.err = nil
		}
		o.mu.Unlock()
		return
	}

	h := DraftHash(d)

	o.mu.Lock()
	if o.state == StateSubmitting || o.state == StateSubmitted {
		o.mu.Unlock()
		return
	}
	if o.state == StateQuoted && o.hash == h {
		o.mu.Unlock()
		return
	}
	if (o.state == StateQuoteFailed || o.state == StateSubmitFailed) && o.hash == h {
		// Failures are not retried automatically; the operator must act.
		o.mu.Unlock()
		return
	}
	o.state = StateQuoting
	o.hash = h
	o.mu.Unlock()

	q, err := o.client.Quote(ctx, d)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hash != h {
		// The draft mutated while this quote was in flight; a newer Sync owns
		// the state now.
		return
	}
	if err != nil {
		o.state = StateQuoteFailed
		o.err = err
		return
	}
	o.quote = q
	o.state = StateQuoted
	o.err = nil
}

// Submit books the order. It is a no-op unless the orchestrator is Quoted for
// this exact draft; failures surface the server message, preserve the draft,
// and are never retried automatically.
func (o *Orchestrator) Submit(ctx context.Context, d draft.OrderDraft) (types.ID, error) {
	if !draft.Submittable(d) {
		return "", ErrNotReady
	}

	o.mu.Lock()
	if o.state != StateQuoted || o.hash != DraftHash(d) {
		o.mu.Unlock()
		return "", ErrNotQuoted
	}
	o.state = StateSubmitting
	o.mu.Unlock()

	id, err := o.client.Submit(ctx, d)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		// The draft survives; Reacknowledge returns to Quoted for a manual retry.
		o.state = StateSubmitFailed
		o.err = err
		return "", err
	}
	o.state = StateSubmitted
	o.err = nil
	return id, nil
}

// Reacknowledge returns a failed orchestrator to a retryable state: QuoteFailed
// drops to Idle (the next Sync re-quotes), SubmitFailed returns to Quoted.
func (o *Orchestrator) Reacknowledge() {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateQuoteFailed:
		o.state = StateIdle
		o.hash = ""
	case StateSubmitFailed:
		o.state = StateQuoted
	}
	o.err = nil
}

// DraftHash is the idempotency key for quoting: a digest of the draft's
// canonical JSON form.
func DraftHash(d draft.OrderDraft) string {
	b, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
