// README: Lookup tests (miss handling, short-circuit on invalid phone).
package customer

import (
	"context"
	"errors"
	"testing"

	"courierdash/internal/backend"
	"courierdash/internal/modules/draft"
)

type stubFetcher struct {
	rec   draft.RawRecord
	err   error
	calls int
}

func (f *stubFetcher) Customer(_ context.Context, _ string) (draft.RawRecord, error) {
	f.calls++
	return f.rec, f.err
}

func TestLookupHit(t *testing.T) {
	f := &stubFetcher{rec: draft.RawRecord{"name": "Ada"}}
	s := NewService(f, nil)
	rec, ok, err := s.Lookup(context.Background(), "(212) 555-1234")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if rec["name"] != "Ada" {
		t.Errorf("rec = %v", rec)
	}
}

func TestLookupMissIsNotAnError(t *testing.T) {
	f := &stubFetcher{err: backend.ErrNotFound}
	s := NewService(f, nil)
	rec, ok, err := s.Lookup(context.Background(), "2125551234")
	if err != nil || ok || rec != nil {
		t.Errorf("rec=%v ok=%v err=%v, want quiet miss", rec, ok, err)
	}
}

func TestLookupTransientErrorPropagates(t *testing.T) {
	f := &stubFetcher{err: backend.ErrTransient}
	s := NewService(f, nil)
	_, _, err := s.Lookup(context.Background(), "2125551234")
	if !errors.Is(err, backend.ErrTransient) {
		t.Errorf("err = %v", err)
	}
}

func TestLookupSkipsInvalidPhones(t *testing.T) {
	f := &stubFetcher{rec: draft.RawRecord{}}
	s := NewService(f, nil)
	for _, phone := range []string{"", "555-1234", "not a phone"} {
		if _, ok, err := s.Lookup(context.Background(), phone); ok || err != nil {
			t.Errorf("Lookup(%q): ok=%v err=%v", phone, ok, err)
		}
	}
	if f.calls != 0 {
		t.Errorf("platform called %d times for invalid phones", f.calls)
	}
}
