package extract

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// field identifies an order field an anchor label points at
type field int

const (
	fieldNone field = iota
	fieldName
	fieldContact
	fieldFulfillment
	fieldAddress
	fieldDate
	fieldTime
	fieldRecipient
	fieldRequest
	fieldPaymentStatus
	fieldPaymentAmount
	fieldDeliveryFee
	fieldDiscountAmount
)

var fieldNames = map[field]string{
	fieldName:           "customer_name",
	fieldContact:        "contact",
	fieldFulfillment:    "fulfillment",
	fieldAddress:        "address",
	fieldDate:           "date",
	fieldTime:           "time",
	fieldRecipient:      "recipient",
	fieldRequest:        "request",
	fieldPaymentStatus:  "payment_status",
	fieldPaymentAmount:  "payment_amount",
	fieldDeliveryFee:    "delivery_fee",
	fieldDiscountAmount: "discount_amount",
}

func (f field) String() string {
	return fieldNames[f]
}

// claimRule is the ClaimedSet owner name for lines consumed by the field
func (f field) claimRule() string {
	return "field:" + f.String()
}

// Claim owners used by the classifier
const (
	ruleMarker     = "section:marker"
	ruleSection    = "section:title"
	rulePreamble   = "section:preamble"
	ruleNoise      = "section:noise"
	ruleFooter     = "section:footer"
	ruleDisclaimer = "field:address_disclaimer"
)

type anchor struct {
	label string
	field field
}

var templateAnchors = longestFirst([]anchor{
	{"예약자명", fieldName},
	{"예약자", fieldName},
	{"주문자", fieldName},
	{"Reserved by", fieldName},
	{"Customer Name", fieldName},

	{"연락처", fieldContact},
	{"전화번호", fieldContact},
	{"휴대폰", fieldContact},
	{"Contact", fieldContact},
	{"Phone", fieldContact},

	{"수령방법", fieldFulfillment},
	{"수령 방법", fieldFulfillment},
	{"Fulfillment", fieldFulfillment},

	{"배달주소", fieldAddress},
	{"배송지", fieldAddress},
	{"주소", fieldAddress},
	{"Delivery Address", fieldAddress},
	{"Address", fieldAddress},

	{"이용일시", fieldDate},
	{"예약일시", fieldDate},
	{"방문일", fieldDate},
	{"수령일", fieldDate},
	{"Date", fieldDate},

	{"이용시간", fieldTime},
	{"수령시간", fieldTime},
	{"Time", fieldTime},

	{"방문자", fieldRecipient},
	{"수령인", fieldRecipient},
	{"받는분", fieldRecipient},
	{"Visitor", fieldRecipient},
	{"Recipient", fieldRecipient},

	{"요청사항", fieldRequest},
	{"요청 사항", fieldRequest},
	{"Request", fieldRequest},
	{"Memo", fieldRequest},

	{"결제상태", fieldPaymentStatus},
	{"Payment Status", fieldPaymentStatus},

	{"총 결제금액", fieldPaymentAmount},
	{"결제금액", fieldPaymentAmount},
	{"Payment Amount", fieldPaymentAmount},
	{"Total Amount", fieldPaymentAmount},

	{"배달비", fieldDeliveryFee},
	{"배달료", fieldDeliveryFee},
	{"Delivery Fee", fieldDeliveryFee},

	{"할인금액", fieldDiscountAmount},
	{"Discount Amount", fieldDiscountAmount},
})

// looseAnchors adds the generic words accepted anywhere in a line
var looseAnchors = longestFirst(append([]anchor{
	{"이름", fieldName},
	{"성함", fieldName},
	{"name", fieldName},
	{"전화", fieldContact},
	{"연락", fieldContact},
	{"contact", fieldContact},
	{"phone", fieldContact},
	{"주소", fieldAddress},
	{"address", fieldAddress},
	{"주문유형", fieldFulfillment},
	{"order type", fieldFulfillment},
}, templateAnchors...))

var itemLabels = longestFirst([]anchor{
	{"상품명", fieldNone},
	{"메뉴명", fieldNone},
	{"품목", fieldNone},
	{"Product name", fieldNone},
	{"Item", fieldNone},
})

var (
	markerTitles   = []string{"예약내역", "주문내역", "Reservation Details"}
	menuTitles     = []string{"메뉴", "메뉴정보", "주문상품", "Items", "Menu"}
	customerTitles = []string{"예약자입력정보", "예약자정보", "Customer Information"}
	paymentTitles  = []string{"결제정보", "Payment Information"}
	footerMarks    = []string{"고객센터", "본 메일은 발신전용", "This email was sent"}
	noiseLines     = []string{"자세히 보기", "바로가기", "View details", "예약 확인하기"}
)

func longestFirst(anchors []anchor) []anchor {
	out := make([]anchor, len(anchors))
	copy(out, anchors)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i].label), utf8.RuneCountInString(out[j].label)
		if li != lj {
			return li > lj
		}
		return out[i].label < out[j].label
	})
	return out
}

// trimBullet strips list bullets and brackets around a line
func trimBullet(s string) string {
	return strings.TrimSpace(strings.Trim(s, " \t-–•·*■□●○◆◇▶▷►[]<>【】「」"))
}

// trimValue strips the separators between a label and its value
func trimValue(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), ":：-|=)]>】」 "))
}

// compact folds case and drops whitespace for title comparisons
func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// matchPrefixAnchor matches the longest label the line starts with
func matchPrefixAnchor(text string, anchors []anchor) (field, string, bool) {
	t := trimBullet(text)
	for _, a := range anchors {
		n := len(a.label)
		if len(t) < n || !strings.EqualFold(t[:n], a.label) {
			continue
		}
		if !labelBoundary(a.label, t[n:]) {
			continue
		}
		return a.field, trimValue(t[n:]), true
	}
	return fieldNone, "", false
}

// matchAnyAnchor matches the longest label found anywhere in the line
func matchAnyAnchor(text string, anchors []anchor) (field, string, bool) {
	lower := strings.ToLower(text)
	src := text
	if len(lower) != len(text) {
		src = lower
	}
	for _, a := range anchors {
		label := strings.ToLower(a.label)
		from := 0
		for {
			i := strings.Index(lower[from:], label)
			if i < 0 {
				break
			}
			i += from
			end := i + len(label)
			if labelBoundary(label, lower[end:]) && leftBoundary(label, lower[:i]) {
				return a.field, trimValue(src[end:]), true
			}
			from = end
		}
	}
	return fieldNone, "", false
}

// labelBoundary rejects an ASCII label that continues into a word ("Items" for "Item")
func labelBoundary(label, rest string) bool {
	last, _ := utf8.DecodeLastRuneInString(label)
	if last >= utf8.RuneSelf {
		return true
	}
	return !startsWithLetter(rest)
}

func leftBoundary(label, before string) bool {
	first, _ := utf8.DecodeRuneInString(label)
	if first >= utf8.RuneSelf {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(before)
	return !(prev < utf8.RuneSelf && (prev >= 'a' && prev <= 'z' || prev >= 'A' && prev <= 'Z'))
}

func titleIn(text string, titles []string) bool {
	c := compact(trimBullet(text))
	if c == "" {
		return false
	}
	for _, title := range titles {
		if c == compact(title) {
			return true
		}
	}
	return false
}

func isMarker(text string) bool {
	return titleIn(text, markerTitles)
}

// sectionTitle reports which section a title line opens
func sectionTitle(text string) (Section, bool) {
	switch {
	case titleIn(text, menuTitles):
		return SectionMenu, true
	case titleIn(text, customerTitles):
		return SectionCustomer, true
	case titleIn(text, paymentTitles):
		return SectionPayment, true
	}
	return SectionNone, false
}

func isFooter(text string) bool {
	c := compact(text)
	for _, mark := range footerMarks {
		if strings.HasPrefix(c, compact(mark)) {
			return true
		}
	}
	return false
}

func isNoise(text string) bool {
	if strings.Trim(text, "-=_*~─━·.│|+ ") == "" {
		return true
	}
	return titleIn(text, noiseLines)
}

// isDisclaimer matches the notice printed under a delivery address
func isDisclaimer(text string) bool {
	t := strings.TrimSpace(text)
	c := compact(t)
	return strings.HasPrefix(t, "※") ||
		strings.HasPrefix(c, "*주소") ||
		strings.Contains(c, "주소는배달") ||
		strings.HasPrefix(c, "theaddress")
}

// isAnchorLine reports whether a line is a label of any kind and so can
// never be taken as another field's value.
func isAnchorLine(text string) bool {
	if _, _, ok := matchPrefixAnchor(text, templateAnchors); ok {
		return true
	}
	if _, ok := sectionTitle(text); ok {
		return true
	}
	return isMarker(text) || isFooter(text)
}

// isLabelWord reports whether s is nothing but a label
func isLabelWord(s string) bool {
	c := compact(trimValue(trimBullet(s)))
	if c == "" {
		return true
	}
	for _, group := range [][]anchor{looseAnchors, itemLabels} {
		for _, a := range group {
			if c == compact(a.label) {
				return true
			}
		}
	}
	for _, titles := range [][]string{markerTitles, menuTitles, customerTitles, paymentTitles} {
		for _, title := range titles {
			if c == compact(title) {
				return true
			}
		}
	}
	return false
}
