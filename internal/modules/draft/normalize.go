// README: Field normalizer; maps heterogeneous platform/customer records to a canonical section.
package draft

import (
	"fmt"
	"strconv"
	"strings"
)

// RawRecord is a loosely-typed record as decoded from platform JSON or a
// customer file. Historical records use several aliases for the same field;
// Normalize resolves them to one canonical shape.
type RawRecord map[string]any

// Normalize maps src into a canonical PartySection. It is pure and total:
// every missing field defaults to its zero value and no input ever fails.
// Normalizing an already-normalized record is a no-op (idempotent).
func Normalize(src RawRecord, kind PartyKind) PartySection {
	p := PartySection{Kind: kind}
	if src == nil {
		return p
	}

	p.CustomerID = str(src, "customer_id", "customerId")
	p.Phone = DigitsOnly(str(src, "phone", "phone_number"))
	p.PhoneFormatted = FormatPhone(p.Phone)
	p.Name = str(src, "name", "full_name")
	p.Note = str(src, "note", "notes")
	p.Apt = str(src, "apt", "apartment", "unit")
	p.AccessCode = str(src, "access_code", "accessCode")

	p.Address = normalizeAddress(src)

	p.Verification = Verification{
		Picture:   boolean(src, "require_picture", "picture"),
		Recipient: boolean(src, "require_recipient", "recipient"),
		Signature: boolean(src, "require_signature", "signature"),
	}
	if kind == PartyPickup {
		// Pickup proof is picture-only.
		p.Verification.Recipient = false
		p.Verification.Signature = false
	}

	if kind == PartyDelivery {
		p.Items = normalizeItems(src["items"])
		p.TipCents = integer(src, "tip")
		p.SizeCategory = SizeCategory(str(src, "size_category", "size"))
		if !ValidSize(p.SizeCategory) {
			p.SizeCategory = ""
		}
		p.UseMeasurements = boolean(src, "use_measurements")
		p.ExternalOrderID = str(src, "external_order_id", "external_id")
	}
	return p
}

func normalizeAddress(src RawRecord) Address {
	// Nested address object wins over flattened top-level keys.
	if nested, ok := src["address"].(map[string]any); ok {
		src = RawRecord(nested)
	}
	return Address{
		AddressID: str(src, "address_id", "addressId"),
		// The more specific alias wins when both are present.
		Formatted: str(src, "formatted_address", "formatted"),
		Street1:   str(src, "street_address_1", "street_address", "street"),
		City:      str(src, "city"),
		State:     str(src, "state"),
		Zip:       str(src, "zip", "zip_code", "postal_code"),
		Lat:       str(src, "lat", "latitude"),
		Lon:       str(src, "lon", "lng", "longitude"),
		ZoneIDs:   intList(src["zone_ids"]),
	}
}

func normalizeItems(v any) []Item {
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]Item); ok {
			out := make([]Item, len(typed))
			copy(out, typed)
			return out
		}
		return nil
	}
	items := make([]Item, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		r := RawRecord(m)
		items = append(items, Item{
			Description: str(r, "description", "desc"),
			Quantity:    int(integer(r, "quantity", "qty")),
			Length:      float(r, "length"),
			Width:       float(r, "width"),
			Height:      float(r, "height"),
			Weight:      float(r, "weight"),
		})
	}
	return items
}

// AsRaw converts a section back to its canonical raw form, so that
// Normalize(p.AsRaw(), p.Kind) reproduces p exactly.
func (p PartySection) AsRaw() RawRecord {
	addr := map[string]any{
		"address_id":       p.Address.AddressID,
		"formatted_address": p.Address.Formatted,
		"street_address_1": p.Address.Street1,
		"city":             p.Address.City,
		"state":            p.Address.State,
		"zip":              p.Address.Zip,
		"lat":              p.Address.Lat,
		"lon":              p.Address.Lon,
		"zone_ids":         p.Address.ZoneIDs,
	}
	r := RawRecord{
		"customer_id":       p.CustomerID,
		"phone":             p.Phone,
		"name":              p.Name,
		"note":              p.Note,
		"apt":               p.Apt,
		"access_code":       p.AccessCode,
		"address":           addr,
		"require_picture":   p.Verification.Picture,
		"require_recipient": p.Verification.Recipient,
		"require_signature": p.Verification.Signature,
	}
	if p.Kind == PartyDelivery {
		r["items"] = p.Items
		r["tip"] = p.TipCents
		r["size_category"] = string(p.SizeCategory)
		r["use_measurements"] = p.UseMeasurements
		r["external_order_id"] = p.ExternalOrderID
	}
	return r
}

// DigitsOnly strips everything but digits and drops a leading US country code.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	d := b.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d
}

// FormatPhone renders a 10-digit number as (XXX) XXX-XXXX; anything else is
// returned unchanged.
func FormatPhone(digits string) string {
	if len(digits) != 10 {
		return digits
	}
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}

func str(src RawRecord, keys ...string) string {
	for _, k := range keys {
		switch v := src[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return trimFloat(v)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

func boolean(src RawRecord, keys ...string) bool {
	for _, k := range keys {
		if v, ok := src[k].(bool); ok {
			return v
		}
	}
	return false
}

func integer(src RawRecord, keys ...string) int64 {
	for _, k := range keys {
		switch v := src[k].(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func float(src RawRecord, keys ...string) float64 {
	for _, k := range keys {
		switch v := src[k].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func intList(v any) []int {
	switch list := v.(type) {
	case []int:
		if len(list) == 0 {
			return nil
		}
		out := make([]int, len(list))
		copy(out, list)
		return out
	case []any:
		var out []int
		for _, e := range list {
			switch n := e.(type) {
			case float64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			}
		}
		return out
	}
	return nil
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
