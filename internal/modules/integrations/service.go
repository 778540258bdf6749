// README: Integration settings service (defaults, key rotation).
package integrations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// SettingsStore is the persistence the service needs; the pgx Store satisfies
// it in production.
type SettingsStore interface {
	Get(ctx context.Context, accountID string) (*Settings, error)
	Save(ctx context.Context, st *Settings) error
}

type Service struct {
	store SettingsStore
}

func NewService(store SettingsStore) *Service {
	return &Service{store: store}
}

// Get returns the account's settings, falling back to defaults for accounts
// that never saved any.
func (s *Service) Get(ctx context.Context, accountID string) (Settings, error) {
	st, err := s.store.Get(ctx, accountID)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(accountID), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return *st, nil
}

// Save persists the settings. The dashboard API key is never set through Save;
// RotateAPIKey is the only way to change it.
func (s *Service) Save(ctx context.Context, st Settings) (Settings, error) {
	cur, err := s.Get(ctx, st.AccountID)
	if err != nil {
		return Settings{}, err
	}
	st.APIKey = cur.APIKey
	if err := s.store.Save(ctx, &st); err != nil {
		return Settings{}, err
	}
	return st, nil
}

// RotateAPIKey generates a fresh dashboard API key, replacing any previous one.
func (s *Service) RotateAPIKey(ctx context.Context, accountID string) (Settings, error) {
	st, err := s.Get(ctx, accountID)
	if err != nil {
		return Settings{}, err
	}
	st.APIKey, err = newAPIKey()
	if err != nil {
		return Settings{}, err
	}
	if err := s.store.Save(ctx, &st); err != nil {
		return Settings{}, err
	}
	return st, nil
}

func newAPIKey() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("cd_%s", hex.EncodeToString(b[:])), nil
}
