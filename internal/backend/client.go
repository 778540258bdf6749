// README: Platform REST client; bearer auth, bounded retries on reads, raw errors on mutations.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"courierdash/internal/config"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/quote"
	"courierdash/internal/modules/timeframe"
	"courierdash/internal/types"
)

var (
	// ErrNotFound maps a 404 lookup; callers treat it as "no match, proceed
	// with manual entry", not a failure.
	ErrNotFound = errors.New("not found")
	// ErrTransient wraps a timeout/5xx that survived the bounded retries.
	ErrTransient = errors.New("transient backend error")
)

// MutationError carries the raw server message for a failed submit, update,
// or cancel. Mutations are never retried automatically.
type MutationError struct {
	Status  int
	Message string
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Client is the HTTP client for the courier platform. All business logic
// (pricing, routing, geocoding, status transitions) lives behind it.
type Client struct {
	base       string
	token      string
	httpc      *http.Client
	maxRetries int
	backoff    time.Duration
}

func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpc:      &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}
}

// Customer looks up a customer record by phone. GET /customer?phone={phone}
func (c *Client) Customer(ctx context.Context, phone string) (draft.RawRecord, error) {
	var rec draft.RawRecord
	q := url.Values{"phone": {phone}}
	if err := c.read(ctx, http.MethodGet, "/customer", q, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AutocompleteAddress returns ranked suggestions for partial address text.
// GET /address/autocomplete?address={text}
func (c *Client) AutocompleteAddress(ctx context.Context, text string) ([]draft.Address, error) {
	var wire []addressWire
	q := url.Values{"address": {text}}
	if err := c.read(ctx, http.MethodGet, "/address/autocomplete", q, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]draft.Address, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toAddress())
	}
	return out, nil
}

// ValidateAddress resolves a street/zip pair into a geocoded address with zone
// ids. GET /address/validate?street={s}&zip={z}
func (c *Client) ValidateAddress(ctx context.Context, street, zip string) (draft.Address, error) {
	var wire addressWire
	q := url.Values{"street": {street}, "zip": {zip}}
	if err := c.read(ctx, http.MethodGet, "/address/validate", q, nil, &wire); err != nil {
		return draft.Address{}, err
	}
	return wire.toAddress(), nil
}

// Slots fetches per-tier slot lists for the draft on the given date
// (MM-DD-YYYY). POST /slots?date={date}[&order_id={id}]
func (c *Client) Slots(ctx context.Context, d draft.OrderDraft, date string) ([]timeframe.TierSlots, error) {
	var wire []tierWire
	q := url.Values{"date": {date}}
	if d.OrderID != "" {
		q.Set("order_id", d.OrderID)
	}
	if err := c.read(ctx, http.MethodPost, "/slots", q, draftPayload(d), &wire); err != nil {
		return nil, err
	}
	return toTiers(wire), nil
}

// Quote prices the draft. POST /orders/quote
func (c *Client) Quote(ctx context.Context, d draft.OrderDraft) (quote.Quote, error) {
	var wire quoteWire
	if err := c.read(ctx, http.MethodPost, "/orders/quote", nil, draftPayload(d), &wire); err != nil {
		return quote.Quote{}, err
	}
	return quote.Quote{
		Price: types.Money{Amount: wire.Price, Currency: "USD"},
		Tip:   types.Money{Amount: wire.Delivery.Tip, Currency: "USD"},
	}, nil
}

// Submit books the order. POST /orders
func (c *Client) Submit(ctx context.Context, d draft.OrderDraft) (types.ID, error) {
	var wire createOrderWire
	if err := c.mutate(ctx, http.MethodPost, "/orders", nil, draftPayload(d), &wire); err != nil {
		return "", err
	}
	return types.ID(wire.OrderID), nil
}

// Order fetches the tracking snapshot of an order. GET /order/{id}
func (c *Client) Order(ctx context.Context, id string) (OrderRecord, error) {
	var rec OrderRecord
	if err := c.read(ctx, http.MethodGet, "/order/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return OrderRecord{}, err
	}
	return rec, nil
}

// UpdateOrder applies a status/driver patch. PATCH /order/{id}
func (c *Client) UpdateOrder(ctx context.Context, id string, patch OrderPatch) error {
	return c.mutate(ctx, http.MethodPatch, "/order/"+url.PathEscape(id), nil, patch, nil)
}

// CancelOrder cancels an order. DELETE /order/{id}
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/order/"+url.PathEscape(id), nil, nil, nil)
}

// read performs a query with the bounded retry policy: up to maxRetries
// re-attempts with a fixed backoff on timeouts and 5xx responses.
func (c *Client) read(ctx context.Context, method, path string, q url.Values, body, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		status, err := c.do(ctx, method, path, q, body, out)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusNotFound:
			return ErrNotFound
		case status >= 500:
			lastErr = fmt.Errorf("status %d", status)
		case status >= 400:
			return fmt.Errorf("backend rejected %s %s: status %d", method, path, status)
		default:
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s: %v", ErrTransient, method, path, lastErr)
}

// mutate performs a single attempt and surfaces the raw server message; the
// retry decision belongs to the operator.
func (c *Client) mutate(ctx context.Context, method, path string, q url.Values, body, out any) error {
	_, err := c.doMutate(ctx, method, path, q, body, out)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) (int, error) {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) doMutate(ctx context.Context, method, path string, q url.Values, body, out any) (int, error) {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, &MutationError{Status: resp.StatusCode, Message: serverMessage(msg)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (*http.Response, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpc.Do(req)
}

// serverMessage pulls the error text out of a JSON error body, falling back to
// the raw bytes.
func serverMessage(b []byte) string {
	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &wire); err == nil {
		if wire.Error != "" {
			return wire.Error
		}
		if wire.Message != "" {
			return wire.Message
		}
	}
	return strings.TrimSpace(string(b))
}
