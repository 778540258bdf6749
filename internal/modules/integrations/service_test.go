// README: Integration settings service tests.
package integrations

import (
	"context"
	"strings"
	"testing"
)

type memStore struct {
	m map[string]Settings
}

func newMemStore() *memStore { return &memStore{m: make(map[string]Settings)} }

func (s *memStore) Get(_ context.Context, accountID string) (*Settings, error) {
	st, ok := s.m[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (s *memStore) Save(_ context.Context, st *Settings) error {
	s.m[st.AccountID] = *st
	return nil
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := NewService(newMemStore())
	st, err := svc.Get(context.Background(), "acct_1")
	if err != nil {
		t.Fatal(err)
	}
	if !st.SMS.Enabled || !st.SMS.NotifyOnCreate {
		t.Errorf("defaults not applied: %+v", st.SMS)
	}
	if st.APIKey != "" {
		t.Errorf("fresh account should have no API key, got %q", st.APIKey)
	}
}

func TestSaveCannotChangeAPIKey(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	rotated, err := svc.RotateAPIKey(ctx, "acct_1")
	if err != nil {
		t.Fatal(err)
	}

	update := rotated
	update.APIKey = "forged"
	update.SMS.Enabled = false
	saved, err := svc.Save(ctx, update)
	if err != nil {
		t.Fatal(err)
	}
	if saved.APIKey != rotated.APIKey {
		t.Errorf("Save changed the API key: %q -> %q", rotated.APIKey, saved.APIKey)
	}
	if saved.SMS.Enabled {
		t.Error("SMS toggle not saved")
	}
}

func TestRotateAPIKeyReplacesKey(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	first, err := svc.RotateAPIKey(ctx, "acct_1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.RotateAPIKey(ctx, "acct_1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(second.APIKey, "cd_") {
		t.Errorf("key = %q", second.APIKey)
	}
	if first.APIKey == second.APIKey {
		t.Error("rotation returned the same key")
	}

	st, _ := svc.Get(ctx, "acct_1")
	if st.APIKey != second.APIKey {
		t.Errorf("persisted key = %q, want %q", st.APIKey, second.APIKey)
	}
}
