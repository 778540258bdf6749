// README: Integration settings domain model (API keys, SMS, partner connectors).
package integrations

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("integration settings not found")

// SMSSettings controls the notification texts sent to customers.
type SMSSettings struct {
	Enabled         bool   `json:"enabled"`
	NotifyOnCreate  bool   `json:"notify_on_create"`
	NotifyOnPickup  bool   `json:"notify_on_pickup"`
	NotifyOnDropoff bool   `json:"notify_on_dropoff"`
	SenderName      string `json:"sender_name"`
}

// CleanCloudSettings connects a CleanCloud laundry account so its orders flow
// into the dashboard.
type CleanCloudSettings struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
	StoreID string `json:"store_id"`
}

// ZapietSettings connects a Zapiet pickup/delivery widget.
type ZapietSettings struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
}

// Settings is one account's integration configuration.
type Settings struct {
	AccountID  string             `json:"account_id"`
	APIKey     string             `json:"api_key"`
	SMS        SMSSettings        `json:"sms"`
	CleanCloud CleanCloudSettings `json:"cleancloud"`
	Zapiet     ZapietSettings     `json:"zapiet"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// DefaultSettings is what a fresh account sees before saving anything.
func DefaultSettings(accountID string) Settings {
	return Settings{
		AccountID: accountID,
		SMS: SMSSettings{
			Enabled:         true,
			NotifyOnCreate:  true,
			NotifyOnDropoff: true,
		},
	}
}
