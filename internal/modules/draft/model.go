// README: Order draft aggregate, party sections, and status-derived editability.
package draft

import "time"

type Status string

const (
	StatusNewOrder          Status = "new_order"
	StatusProcessing        Status = "processing"
	StatusAssigned          Status = "assigned"
	StatusArrivedAtPickup   Status = "arrived_at_pickup"
	StatusPickedUp          Status = "picked_up"
	StatusArrivedAtDelivery Status = "arrived_at_delivery"
	StatusDelivered         Status = "delivered"
	StatusReturned          Status = "returned"
	StatusUndeliverable     Status = "undeliverable"
	StatusCanceled          Status = "canceled"
)

type PartyKind string

const (
	PartyPickup   PartyKind = "pickup"
	PartyDelivery PartyKind = "delivery"
)

type SizeCategory string

const (
	SizeXSmall SizeCategory = "xsmall"
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
)

func ValidSize(s SizeCategory) bool {
	switch s {
	case SizeXSmall, SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Address is resolved once the platform has geocoded it. Lat/Lon are carried as
// wire strings; an empty string means the coordinate is absent, so a manually
// typed address stays unresolved until validated server-side.
type Address struct {
	AddressID string `json:"address_id,omitempty"`
	Formatted string `json:"formatted"`
	Street1   string `json:"street_address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
	ZoneIDs   []int  `json:"zone_ids,omitempty"`
}

func (a Address) Resolved() bool {
	return a.Lat != "" && a.Lon != ""
}

func (a Address) Empty() bool {
	return a.Formatted == "" && a.Street1 == "" && a.City == "" && a.Zip == "" && !a.Resolved()
}

// Fingerprint identifies the address for change detection (slot re-resolution).
func (a Address) Fingerprint() string {
	return a.Street1 + "|" + a.Zip + "|" + a.Lat + "|" + a.Lon
}

// Verification holds proof-of-service flags. Pickup uses Picture only;
// Recipient and Signature apply to the delivery side.
type Verification struct {
	Picture   bool `json:"picture"`
	Recipient bool `json:"recipient"`
	Signature bool `json:"signature"`
}

type Item struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
}

// PartySection is one half of an order. Delivery is a superset of pickup:
// items, tip, size category, and external order id are delivery-only.
type PartySection struct {
	Kind           PartyKind    `json:"kind"`
	CustomerID     string       `json:"customer_id"`
	Phone          string       `json:"phone"`
	PhoneFormatted string       `json:"phone_formatted"`
	Name           string       `json:"name"`
	Note           string       `json:"note"`
	Apt            string       `json:"apt"`
	AccessCode     string       `json:"access_code"`
	Address        Address      `json:"address"`
	Verification   Verification `json:"verification"`

	Items           []Item       `json:"items,omitempty"`
	TipCents        int64        `json:"tip_cents,omitempty"`
	SizeCategory    SizeCategory `json:"size_category,omitempty"`
	UseMeasurements bool         `json:"use_measurements,omitempty"`
	ExternalOrderID string       `json:"external_order_id,omitempty"`
}

// TimeframeSelection is the chosen service tier and slot, plus the slack the
// operator allows around it. PickupReadyBy must fall within
// [Start - PickupExt, Start]; DeliveryDeadline within [End, End + DeliveryExt].
type TimeframeSelection struct {
	Service          string     `json:"service"`
	Start            time.Time  `json:"start"`
	End              time.Time  `json:"end"`
	PickupExtMin     int        `json:"pickup_ext_min"`
	DeliveryExtMin   int        `json:"delivery_ext_min"`
	PickupReadyBy    *time.Time `json:"pickup_ready_by,omitempty"`
	DeliveryDeadline *time.Time `json:"delivery_deadline,omitempty"`
	// UserPicked marks a slot the operator chose explicitly; tier changes do not
	// override it with the first-slot default.
	UserPicked bool `json:"user_picked"`
}

func (t TimeframeSelection) Chosen() bool {
	return t.Service != "" && !t.Start.IsZero() && !t.End.IsZero()
}

// OrderDraft is the in-progress order being composed. OrderID is set only when
// editing an existing order.
type OrderDraft struct {
	Status    Status             `json:"status"`
	Pickup    PartySection       `json:"pickup"`
	Delivery  PartySection       `json:"delivery"`
	Timeframe TimeframeSelection `json:"timeframe"`
	OrderID   string             `json:"order_id,omitempty"`
}

// CanEditContact reports whether contact/detail fields of the given section may
// change under the current status. The delivery side stays editable while the
// courier is at or past the pickup stop.
func CanEditContact(st Status, kind PartyKind) bool {
	switch st {
	case StatusNewOrder, StatusProcessing, StatusAssigned:
		return true
	case StatusArrivedAtPickup, StatusPickedUp:
		return kind == PartyDelivery
	}
	return false
}

// CanEditAddress reports whether addresses may change. Once an order is
// assigned the route is committed and addresses are locked.
func CanEditAddress(st Status) bool {
	return st == StatusNewOrder || st == StatusProcessing
}

// CanEditTimeframe follows address editability: a committed route implies a
// committed window.
func CanEditTimeframe(st Status) bool {
	return CanEditAddress(st)
}
