// README: Integration settings store backed by PostgreSQL.
package integrations

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, accountID string) (*Settings, error) {
	row := s.db.QueryRow(ctx, `
		SELECT account_id, api_key,
		       sms_enabled, sms_on_create, sms_on_pickup, sms_on_dropoff, sms_sender,
		       cleancloud_enabled, cleancloud_api_key, cleancloud_store_id,
		       zapiet_enabled, zapiet_api_key,
		       updated_at
		FROM integration_settings
		WHERE account_id = $1`, accountID,
	)

	var st Settings
	var apiKey, smsSender, ccKey, ccStore, zpKey sql.NullString

	err := row.Scan(
		&st.AccountID, &apiKey,
		&st.SMS.Enabled, &st.SMS.NotifyOnCreate, &st.SMS.NotifyOnPickup, &st.SMS.NotifyOnDropoff, &smsSender,
		&st.CleanCloud.Enabled, &ccKey, &ccStore,
		&st.Zapiet.Enabled, &zpKey,
		&st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	st.APIKey = apiKey.String
	st.SMS.SenderName = smsSender.String
	st.CleanCloud.APIKey = ccKey.String
	st.CleanCloud.StoreID = ccStore.String
	st.Zapiet.APIKey = zpKey.String
	return &st, nil
}

func (s *Store) Save(ctx context.Context, st *Settings) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO integration_settings (
			account_id, api_key,
			sms_enabled, sms_on_create, sms_on_pickup, sms_on_dropoff, sms_sender,
			cleancloud_enabled, cleancloud_api_key, cleancloud_store_id,
			zapiet_enabled, zapiet_api_key,
			updated_at
		) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12,
			NOW()
		)
		ON CONFLICT (account_id) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			sms_enabled = EXCLUDED.sms_enabled,
			sms_on_create = EXCLUDED.sms_on_create,
			sms_on_pickup = EXCLUDED.sms_on_pickup,
			sms_on_dropoff = EXCLUDED.sms_on_dropoff,
			sms_sender = EXCLUDED.sms_sender,
			cleancloud_enabled = EXCLUDED.cleancloud_enabled,
			cleancloud_api_key = EXCLUDED.cleancloud_api_key,
			cleancloud_store_id = EXCLUDED.cleancloud_store_id,
			zapiet_enabled = EXCLUDED.zapiet_enabled,
			zapiet_api_key = EXCLUDED.zapiet_api_key,
			updated_at = NOW()`,
		st.AccountID, nullIfEmpty(st.APIKey),
		st.SMS.Enabled, st.SMS.NotifyOnCreate, st.SMS.NotifyOnPickup, st.SMS.NotifyOnDropoff, nullIfEmpty(st.SMS.SenderName),
		st.CleanCloud.Enabled, nullIfEmpty(st.CleanCloud.APIKey), nullIfEmpty(st.CleanCloud.StoreID),
		st.Zapiet.Enabled, nullIfEmpty(st.Zapiet.APIKey),
	)
	return err
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
