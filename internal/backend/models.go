// README: Wire shapes for the courier platform REST API.
package backend

import (
	"time"

	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/timeframe"
)

type addressWire struct {
	AddressID string  `json:"address_id"`
	Formatted string  `json:"formatted_address"`
	Street1   string  `json:"street_address_1"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Lat       string  `json:"lat"`
	Lon       string  `json:"lon"`
	ZoneIDs   []int   `json:"zone_ids"`
}

func (a addressWire) toAddress() draft.Address {
	return draft.Address{
		AddressID: a.AddressID,
		Formatted: a.Formatted,
		Street1:   a.Street1,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Lat:       a.Lat,
		Lon:       a.Lon,
		ZoneIDs:   a.ZoneIDs,
	}
}

type slotWire struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PickupExt   int       `json:"pickup_ext"`
	DeliveryExt int       `json:"delivery_ext"`
}

type tierWire struct {
	Service string     `json:"service"`
	Slots   []slotWire `json:"slots"`
}

func toTiers(wire []tierWire) []timeframe.TierSlots {
	tiers := make([]timeframe.TierSlots, 0, len(wire))
	for _, tw := range wire {
		tier := timeframe.TierSlots{Service: tw.Service}
		for _, sw := range tw.Slots {
			tier.Slots = append(tier.Slots, timeframe.Slot{
				Start:          sw.StartTime,
				End:            sw.EndTime,
				PickupExtMin:   sw.PickupExt,
				DeliveryExtMin: sw.DeliveryExt,
			})
		}
		tiers = append(tiers, tier)
	}
	return tiers
}

type quoteWire struct {
	Price    int64 `json:"price"`
	Delivery struct {
		Tip int64 `json:"tip"`
	} `json:"delivery"`
}

type createOrderWire struct {
	OrderID string `json:"order_id"`
}

// OrderRecord is the tracking snapshot of a live order.
type OrderRecord struct {
	OrderID  string          `json:"order_id"`
	Status   draft.Status    `json:"status"`
	DriverID string          `json:"driver_id"`
	Pickup   draft.RawRecord `json:"pickup"`
	Delivery draft.RawRecord `json:"delivery"`
	Timeframe struct {
		Service   string    `json:"service"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	} `json:"timeframe"`
}

// OrderPatch carries partial status/driver updates for PATCH /order/{id}.
type OrderPatch struct {
	Status   *draft.Status `json:"status,omitempty"`
	DriverID *string       `json:"driver_id,omitempty"`
}

// draftPayload renders the full draft as the request body used by the slots,
// quote, and order-creation endpoints.
func draftPayload(d draft.OrderDraft) map[string]any {
	tf := map[string]any{
		"service":      d.Timeframe.Service,
		"start_time":   d.Timeframe.Start,
		"end_time":     d.Timeframe.End,
		"pickup_ext":   d.Timeframe.PickupExtMin,
		"delivery_ext": d.Timeframe.DeliveryExtMin,
	}
	if d.Timeframe.PickupReadyBy != nil {
		tf["pickup_ready_by"] = *d.Timeframe.PickupReadyBy
	}
	if d.Timeframe.DeliveryDeadline != nil {
		tf["delivery_deadline"] = *d.Timeframe.DeliveryDeadline
	}
	body := map[string]any{
		"status":    string(d.Status),
		"pickup":    map[string]any(d.Pickup.AsRaw()),
		"delivery":  map[string]any(d.Delivery.AsRaw()),
		"timeframe": tf,
	}
	if d.OrderID != "" {
		body["order_id"] = d.OrderID
	}
	return body
}
