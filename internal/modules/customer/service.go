// README: Customer lookup service; read-through cache over the platform API.
package customer

import (
	"context"
	"errors"

	"courierdash/internal/backend"
	"courierdash/internal/modules/draft"
)

// Fetcher asks the platform for a customer record by phone.
type Fetcher interface {
	Customer(ctx context.Context, phone string) (draft.RawRecord, error)
}

type Service struct {
	fetch Fetcher
	cache *Cache
}

func NewService(fetch Fetcher, cache *Cache) *Service {
	return &Service{fetch: fetch, cache: cache}
}

// Lookup returns the customer record for a phone. A miss is not an error: the
// operator proceeds with manual entry. Transient failures propagate so the UI
// can offer a manual retry.
func (s *Service) Lookup(ctx context.Context, phone string) (draft.RawRecord, bool, error) {
	phone = draft.DigitsOnly(phone)
	if len(phone) != 10 {
		return nil, false, nil
	}
	if rec, ok := s.cache.Get(ctx, phone); ok {
		return rec, true, nil
	}
	rec, err := s.fetch.Customer(ctx, phone)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.cache.Put(ctx, phone, rec)
	return rec, true, nil
}
