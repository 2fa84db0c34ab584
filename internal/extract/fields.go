package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/orderparse/internal/model"
)

// maxAddressLines bounds an address block waiting for its disclaimer
const maxAddressLines = 3

// FieldExtractor fills order fields from unclaimed lines. It returns only
// the claims it made, for the caller to merge; the given set is not modified.
type FieldExtractor interface {
	Name() string
	Extract(lines []RawLine, sections []Section, claimed ClaimedSet, order *model.ParsedOrder) ClaimedSet
}

// fieldPasses returns the extractors for a layout, in order.
// The template pass is followed by the loose pass over what it left.
func fieldPasses(layout Layout, rules []LineRule) []FieldExtractor {
	if layout == LayoutTemplate {
		return []FieldExtractor{templateFields{rules: rules}, looseFields{}}
	}
	return []FieldExtractor{looseFields{}}
}

// templateFields reads labels at the start of a line, value inline or on
// the next line of the same section. Menu lines that read as items are
// left to the item rules.
type templateFields struct {
	rules []LineRule
}

func (templateFields) Name() string { return "template" }

func (t templateFields) Extract(lines []RawLine, sections []Section, claimed ClaimedSet, order *model.ParsedOrder) ClaimedSet {
	out := claimed.Clone()
	fulfillmentAt := -1

	for i := range lines {
		if out.Has(i) || skipForFields(lines[i].Text) {
			continue
		}
		if sections[i] == SectionMenu && matchesItem(lines[i].Text, t.rules) {
			continue
		}
		f, value, ok := matchPrefixAnchor(lines[i].Text, templateAnchors)
		if !ok {
			continue
		}

		valueAt := i
		if value == "" {
			if next, ok := nextUnclaimed(lines, out, i); ok && sections[next.Index] == sections[i] && !isAnchorLine(next.Text) && !isDisclaimer(next.Text) {
				value, valueAt = next.Text, next.Index
			}
		}
		out.claim(i, f.claimRule())
		if valueAt != i {
			out.claim(valueAt, f.claimRule())
		}

		if isSet(order, f) || !applyField(order, f, value, true) {
			continue
		}
		switch f {
		case fieldFulfillment:
			fulfillmentAt = valueAt
		case fieldAddress:
			extendAddress(lines, sections, out, valueAt, order)
		}
	}

	if order.Fulfillment == model.FulfillmentDelivery && order.Address == "" && fulfillmentAt >= 0 {
		addressAfter(lines, sections, out, fulfillmentAt, order)
	}
	return out.since(claimed)
}

// matchesItem reports whether any item rule reads the line on its own
func matchesItem(text string, rules []LineRule) bool {
	for _, rule := range rules {
		if _, ok := rule.Match(text, "", false); ok {
			return true
		}
	}
	return false
}

// skipForFields keeps item-label lines and disclaimers away from field anchors
func skipForFields(text string) bool {
	if isDisclaimer(text) {
		return true
	}
	_, _, ok := matchPrefixAnchor(text, itemLabels)
	return ok
}

// isSet reports whether a field already holds a value. Pickup is the
// default fulfillment, so only delivery counts as set.
func isSet(o *model.ParsedOrder, f field) bool {
	switch f {
	case fieldName:
		return o.CustomerName != ""
	case fieldContact:
		return o.Contact != ""
	case fieldFulfillment:
		return o.Fulfillment == model.FulfillmentDelivery
	case fieldAddress:
		return o.Address != ""
	case fieldDate:
		return o.Date != ""
	case fieldTime:
		return o.Time != ""
	case fieldRecipient:
		return o.Recipient != ""
	case fieldRequest:
		return o.Request != ""
	case fieldPaymentStatus:
		return o.PaymentStatus != ""
	case fieldPaymentAmount:
		return o.VendorTotal != nil
	case fieldDeliveryFee:
		return o.DeliveryFee != 0
	case fieldDiscountAmount:
		return o.DiscountValue != 0
	}
	return false
}

// applyField validates and stores a value. strict is the template pass;
// the loose pass also runs names and addresses through validity filters.
func applyField(o *model.ParsedOrder, f field, value string, strict bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	switch f {
	case fieldName:
		if !strict && !validName(value) {
			return false
		}
		o.CustomerName = value
	case fieldRecipient:
		if !strict && !validName(value) {
			return false
		}
		o.Recipient = value
	case fieldContact:
		if phone, ok := FindPhone(value); ok {
			o.Contact = phone
		} else if strict && hasDigit(value) {
			o.Contact = value
		} else {
			return false
		}
	case fieldFulfillment:
		kind, ok := parseFulfillment(value)
		if !ok {
			return false
		}
		o.Fulfillment = kind
	case fieldAddress:
		if !strict && !validAddress(value) {
			return false
		}
		o.Address = value
	case fieldDate:
		date, ok := NormalizeDate(value)
		if !ok {
			return false
		}
		o.Date = date
		if o.Time == "" {
			if t, ok := NormalizeTime(value); ok {
				o.Time = t
			}
		}
	case fieldTime:
		t, ok := NormalizeTime(value)
		if !ok {
			return false
		}
		o.Time = t
	case fieldRequest:
		o.Request = value
	case fieldPaymentStatus:
		o.PaymentStatus = value
	case fieldPaymentAmount:
		n, ok := readAmount(value)
		if !ok {
			return false
		}
		total := abs(n)
		o.VendorTotal = &total
	case fieldDeliveryFee:
		n, ok := readAmount(value)
		if !ok {
			return false
		}
		o.DeliveryFee = abs(n)
	case fieldDiscountAmount:
		n, ok := readAmount(value)
		if !ok {
			return false
		}
		o.DiscountValue = abs(n)
	default:
		return false
	}
	return true
}

func parseFulfillment(value string) (model.Fulfillment, bool) {
	c := compact(value)
	for _, w := range []string{"배달", "배송", "delivery"} {
		if strings.Contains(c, w) {
			return model.FulfillmentDelivery, true
		}
	}
	for _, w := range []string{"픽업", "포장", "방문수령", "pickup", "takeout", "take-out"} {
		if strings.Contains(c, w) {
			return model.FulfillmentPickup, true
		}
	}
	return "", false
}

func validName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 2 && n <= 20 && !hasDigit(s) && hasLetter(s) && !isLabelWord(s)
}

func validAddress(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 5 && n <= 120 && !isLabelWord(s)
}

// addressBlock collects the lines after start up to the address disclaimer.
// Without a disclaimer within reach there is no block.
func addressBlock(lines []RawLine, sections []Section, claimed ClaimedSet, start int) (parts []string, used []int, disclaimer int) {
	for j := start + 1; j < len(lines) && j <= start+maxAddressLines+1; j++ {
		if claimed.Has(j) || sections[j] != sections[start] {
			break
		}
		t := lines[j].Text
		if isDisclaimer(t) {
			return parts, used, j
		}
		if isAnchorLine(t) || hasPrice(t) {
			break
		}
		parts = append(parts, t)
		used = append(used, j)
	}
	return nil, nil, -1
}

// extendAddress appends continuation lines to an address value when the
// disclaimer closes the block.
func extendAddress(lines []RawLine, sections []Section, claimed ClaimedSet, valueAt int, order *model.ParsedOrder) {
	parts, used, disclaimer := addressBlock(lines, sections, claimed, valueAt)
	if disclaimer < 0 {
		return
	}
	if len(parts) > 0 {
		order.Address = strings.Join(append([]string{order.Address}, parts...), " ")
	}
	for _, j := range used {
		claimed.claim(j, fieldAddress.claimRule())
	}
	claimed.claim(disclaimer, ruleDisclaimer)
}

// addressAfter reads the address block that follows a delivery fulfillment
// value when no address label is present.
func addressAfter(lines []RawLine, sections []Section, claimed ClaimedSet, from int, order *model.ParsedOrder) {
	parts, used, disclaimer := addressBlock(lines, sections, claimed, from)
	if disclaimer >= 0 && len(parts) > 0 {
		order.Address = strings.Join(parts, " ")
		for _, j := range used {
			claimed.claim(j, fieldAddress.claimRule())
		}
		claimed.claim(disclaimer, ruleDisclaimer)
		return
	}

	next, ok := nextUnclaimed(lines, claimed, from)
	if !ok || sections[next.Index] != sections[from] || isAnchorLine(next.Text) || hasPrice(next.Text) {
		return
	}
	if looksLikeAddress(next.Text) {
		order.Address = next.Text
		claimed.claim(next.Index, fieldAddress.claimRule())
	}
}

var addressTokens = []string{"시 ", "구 ", "동 ", "로 ", "길 ", "읍 ", "면 ", "호", "층", "아파트", "street", "st.", "ave", "road", "apt", "suite"}

func looksLikeAddress(s string) bool {
	if !validAddress(s) || !hasDigit(s) {
		return false
	}
	lower := strings.ToLower(s) + " "
	for _, tok := range addressTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
