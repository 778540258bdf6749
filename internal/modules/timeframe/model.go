// README: Service tiers and bookable slots returned by the platform.
package timeframe

import (
	"strings"
	"time"
)

// Slot is one concrete bookable window for a service tier.
type Slot struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	PickupExtMin   int       `json:"pickup_ext_min"`
	DeliveryExtMin int       `json:"delivery_ext_min"`
}

// TierSlots is the slot list for one named service tier, in platform order.
type TierSlots struct {
	Service string `json:"service"`
	Slots   []Slot `json:"slots"`
}

// DefaultSelection picks the tier and slot to preselect: the first tier whose
// name contains both "3" and "hour" (case-insensitive) with at least one slot,
// otherwise the first tier with any slot, in list order. Deterministic by
// construction.
func DefaultSelection(tiers []TierSlots) (string, Slot, bool) {
	for _, tier := range tiers {
		name := strings.ToLower(tier.Service)
		if strings.Contains(name, "3") && strings.Contains(name, "hour") && len(tier.Slots) > 0 {
			return tier.Service, tier.Slots[0], true
		}
	}
	for _, tier := range tiers {
		if len(tier.Slots) > 0 {
			return tier.Service, tier.Slots[0], true
		}
	}
	return "", Slot{}, false
}

// FirstSlotOf returns the first slot of the named tier.
func FirstSlotOf(tiers []TierSlots, service string) (Slot, bool) {
	for _, tier := range tiers {
		if tier.Service == service && len(tier.Slots) > 0 {
			return tier.Slots[0], true
		}
	}
	return Slot{}, false
}
