// README: Completeness evaluator; pure predicates over the draft plus zone warnings.
package draft

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)

// Service zones per side. Mismatches warn but never block submission.
var (
	pickupZones   = map[int]bool{5: true, 7: true}
	deliveryZones = map[int]bool{4: true, 6: true, 7: true}
)

// SectionReport is the evaluator output for one party section.
type SectionReport struct {
	Complete bool     `json:"complete"`
	Warnings []string `json:"warnings,omitempty"`
}

// PhoneComplete reports whether the phone matches a 10-digit pattern after
// stripping the country-code display prefix.
func PhoneComplete(phone string) bool {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+1")
	if len(p) == 11 && p[0] == '1' {
		p = p[1:]
	}
	p = strings.TrimSpace(p)
	return phonePattern.MatchString(p)
}

// IsEmpty reports whether the section carries no operator input yet.
func IsEmpty(p PartySection) bool {
	return p.Phone == "" && p.Name == "" && p.Address.Empty() && len(p.Items) == 0
}

// ItemsCompleted reports whether the item list is bookable. Every item needs a
// description and positive quantity. In measurement mode each item also needs
// positive length, width, and weight (height may be omitted); in size mode the
// section-level category must be one of the enumerated sizes.
func ItemsCompleted(items []Item, useMeasurements bool, size SizeCategory) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" || it.Quantity < 1 {
			return false
		}
		if useMeasurements && (it.Length <= 0 || it.Width <= 0 || it.Weight <= 0) {
			return false
		}
	}
	if !useMeasurements && !ValidSize(size) {
		return false
	}
	return true
}

// EvaluateParty computes the section's completeness and any non-blocking
// warnings. An address is only complete once it carries resolved coordinates:
// free text without a selected suggestion never completes the section.
func EvaluateParty(p PartySection) SectionReport {
	var r SectionReport
	r.Complete = PhoneComplete(p.Phone) &&
		strings.TrimSpace(p.Name) != "" &&
		p.Address.Resolved()
	if p.Kind == PartyDelivery {
		r.Complete = r.Complete && ItemsCompleted(p.Items, p.UseMeasurements, p.SizeCategory)
	}
	if warn := zoneWarning(p); warn != "" {
		r.Warnings = append(r.Warnings, warn)
	}
	return r
}

// IsCompleted reports whether the section is individually complete.
func IsCompleted(p PartySection) bool {
	return EvaluateParty(p).Complete
}

// TimeframeCompleted reports whether a service tier and slot are chosen.
func TimeframeCompleted(t TimeframeSelection) bool {
	return t.Chosen() && t.End.After(t.Start)
}

// Submittable reports whether the whole draft can be priced and submitted.
func Submittable(d OrderDraft) bool {
	return IsCompleted(d.Pickup) && IsCompleted(d.Delivery) && TimeframeCompleted(d.Timeframe)
}

func zoneWarning(p PartySection) string {
	if len(p.Address.ZoneIDs) == 0 {
		return ""
	}
	allowed := pickupZones
	if p.Kind == PartyDelivery {
		allowed = deliveryZones
	}
	for _, z := range p.Address.ZoneIDs {
		if allowed[z] {
			return ""
		}
	}
	return "address is outside the service zone"
}
