package extract

import (
	"unicode/utf8"

	"github.com/ppiankov/orderparse/internal/model"
)

// maxScheduleRunes bounds a label-free line taken as a date or time
const maxScheduleRunes = 40

// looseFields matches labels anywhere in a line and only fills fields that
// are still unset. Values that fail validation leave the line unclaimed.
// Menu section lines belong to the item rules and are never read.
type looseFields struct{}

func (looseFields) Name() string { return "loose" }

func (looseFields) Extract(lines []RawLine, sections []Section, claimed ClaimedSet, order *model.ParsedOrder) ClaimedSet {
	out := claimed.Clone()
	fulfillmentAt := -1

	for i := range lines {
		if out.Has(i) || sections[i] == SectionMenu || skipForFields(lines[i].Text) {
			continue
		}
		text := lines[i].Text

		if f, value, ok := matchAnyAnchor(text, looseAnchors); ok {
			valueAt := i
			if value == "" {
				if next, ok := nextUnclaimed(lines, out, i); ok && !isAnchorLine(next.Text) && !isDisclaimer(next.Text) {
					value, valueAt = next.Text, next.Index
				}
			}
			if isSet(order, f) || !applyField(order, f, value, false) {
				continue
			}
			out.claim(i, f.claimRule())
			if valueAt != i {
				out.claim(valueAt, f.claimRule())
			}
			if f == fieldFulfillment && order.Fulfillment == model.FulfillmentDelivery {
				fulfillmentAt = valueAt
			}
			continue
		}

		if kind, ok := fulfillmentWord(text); ok {
			if kind == model.FulfillmentDelivery && !isSet(order, fieldFulfillment) {
				fulfillmentAt = i
			}
			if !isSet(order, fieldFulfillment) {
				order.Fulfillment = kind
			}
			out.claim(i, fieldFulfillment.claimRule())
			continue
		}

		if scheduleLine(text) {
			if order.Date == "" {
				if d, ok := NormalizeDate(text); ok {
					order.Date = d
					if order.Time == "" {
						if t, ok := NormalizeTime(text); ok {
							order.Time = t
						}
					}
					out.claim(i, fieldDate.claimRule())
					continue
				}
			}
			if order.Time == "" {
				if _, ok := NormalizeDate(text); !ok {
					if t, ok := NormalizeTime(text); ok {
						order.Time = t
						out.claim(i, fieldTime.claimRule())
					}
				}
			}
		}
	}

	if order.Fulfillment == model.FulfillmentDelivery && order.Address == "" && fulfillmentAt >= 0 {
		addressAfter(lines, sections, out, fulfillmentAt, order)
	}
	return out.since(claimed)
}

// fulfillmentWord matches a line that is nothing but a fulfillment kind
func fulfillmentWord(text string) (model.Fulfillment, bool) {
	switch compact(trimBullet(text)) {
	case "배달", "배송", "delivery":
		return model.FulfillmentDelivery, true
	case "픽업", "포장", "방문수령", "pickup", "takeout":
		return model.FulfillmentPickup, true
	}
	return "", false
}

// scheduleLine guards the label-free date/time read against item lines
func scheduleLine(text string) bool {
	return utf8.RuneCountInString(text) <= maxScheduleRunes && !hasPrice(text)
}

// scanContact finds a mobile number on a free line when no contact was read
// from a label. Claimed lines are never read, so footers, requests and
// addresses cannot supply the number. A line left to the contact field by a
// label whose value failed is still read. Returns the claim it made.
func scanContact(lines []RawLine, claimed ClaimedSet, order *model.ParsedOrder) ClaimedSet {
	out := NewClaimedSet()
	if order.Contact != "" {
		return out
	}
	rule := fieldContact.claimRule()
	for _, l := range lines {
		if owner, ok := claimed.Owner(l.Index); ok && owner != rule {
			continue
		}
		phone, ok := FindPhone(l.Text)
		if !ok {
			continue
		}
		order.Contact = phone
		if !claimed.Has(l.Index) {
			out.claim(l.Index, rule)
		}
		break
	}
	return out
}
