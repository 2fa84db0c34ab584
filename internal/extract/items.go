package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/orderparse/internal/model"
)

// maxParenQuantity rejects "(1234)"-style tokens, which are prices or dates
const maxParenQuantity = 1000

// minBareNameRunes rejects one-letter names such as "총 2"
const minBareNameRunes = 2

var (
	reZone     = regexp.MustCompile(`^([A-Z0-9]{1,3})(?:\s(?i:zone)|\s?(?:존|구역))`)
	reParen    = regexp.MustCompile(`^(.*?\S)\s*\(\s*(\d{1,6})\s*(?:개|ea|EA|x|X)?\s*\)(.*)$`)
	reBare     = regexp.MustCompile(`^(.*\S)\s+(\d{1,6})\s*(?:개|ea|EA)?$`)
	reNameSafe = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}\s&'’./·+\-]*$`)
	reSigned   = regexp.MustCompile(`[-−]\s*\d`)
)

// Candidate is a raw item read from one line, before dedupe and catalog
// resolution.
type Candidate struct {
	Name     string
	Quantity int
	Price    int64
	Rule     string
	Line     int
	UsedNext bool // price came from the following line
}

// LineRule recognizes one item notation. next is the following line when
// it is still unclaimed.
type LineRule struct {
	Name  string
	Match func(text, next string, hasNext bool) (Candidate, bool)
}

// DefaultRules returns the recognizers in priority order with the default
// status deny-list and bare quantity bound.
func DefaultRules() []LineRule {
	return newRules(model.DefaultStatusWords, model.DefaultMaxBareQuantity)
}

func newRules(statusWords []string, maxBare int) []LineRule {
	return []LineRule{
		{Name: model.RuleZone, Match: matchZone},
		{Name: model.RuleParen, Match: matchParen},
		{Name: model.RuleDiscount, Match: matchDiscount},
		{Name: model.RuleLabeled, Match: matchLabeled},
		{Name: model.RuleBare, Match: bareMatcher(statusWords, maxBare)},
	}
}

// ExtractItems runs the rules over every unclaimed line, first match wins.
// A matched line is claimed, and so is the next line when it supplied the
// price.
func ExtractItems(lines []RawLine, claimed ClaimedSet, rules []LineRule) ([]Candidate, ClaimedSet) {
	out := claimed.Clone()
	var candidates []Candidate

	for i, l := range lines {
		if out.Has(i) {
			continue
		}
		next, hasNext := nextUnclaimed(lines, out, i)
		for _, rule := range rules {
			c, ok := rule.Match(l.Text, next.Text, hasNext)
			if !ok {
				continue
			}
			c.Line = i
			c.Rule = rule.Name
			out.claim(i, rule.Name)
			if c.UsedNext {
				out.claim(next.Index, rule.Name)
			}
			candidates = append(candidates, c)
			break
		}
	}
	return candidates, out
}

// lookaheadPrice reads a price from the rest of the line, or from the next
// line when that line is nothing but a price.
func lookaheadPrice(rest, next string, hasNext bool) (int64, bool) {
	if p, ok := FindPrice(rest); ok {
		return p, false
	}
	if hasNext {
		if p, ok := IsPriceLine(next); ok {
			return p, true
		}
	}
	return 0, false
}

// matchZone reads delivery tier tokens such as "D zone", "B존" or "A구역"
func matchZone(text, next string, hasNext bool) (Candidate, bool) {
	t := trimBullet(text)
	loc := reZone.FindStringIndex(t)
	if loc == nil || startsWithLetter(t[loc[1]:]) {
		return Candidate{}, false
	}
	price, usedNext := lookaheadPrice(t[loc[1]:], next, hasNext)
	return Candidate{
		Name:     strings.TrimSpace(t[:loc[1]]),
		Quantity: 1,
		Price:    price,
		UsedNext: usedNext,
	}, true
}

// matchParen reads "Name(2)" with an optional trailing price
func matchParen(text, next string, hasNext bool) (Candidate, bool) {
	m := reParen.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Candidate{}, false
	}
	name := trimBullet(m[1])
	if !hasLetter(name) {
		return Candidate{}, false
	}
	qty, err := strconv.Atoi(m[2])
	if err != nil || qty >= maxParenQuantity {
		return Candidate{}, false
	}
	price, usedNext := lookaheadPrice(m[3], next, hasNext)
	return Candidate{
		Name:     name,
		Quantity: qty,
		Price:    price,
		UsedNext: usedNext,
	}, true
}

// matchDiscount turns any discount or coupon line into a negative pseudo-item
func matchDiscount(text, next string, hasNext bool) (Candidate, bool) {
	lower := strings.ToLower(text)
	var name string
	switch {
	case strings.Contains(lower, "쿠폰"):
		name = "쿠폰할인"
	case strings.Contains(lower, "할인"):
		name = "할인"
	case strings.Contains(lower, "coupon"):
		name = "coupon discount"
	case strings.Contains(lower, "discount"):
		name = "discount"
	default:
		return Candidate{}, false
	}

	rest := rePercent.ReplaceAllString(text, " ")
	price, usedNext := lookaheadPrice(rest, next, hasNext)
	if price == 0 && !usedNext && reSigned.MatchString(rest) {
		price, _ = ParseAmount(rest[reSigned.FindStringIndex(rest)[0]:])
	}
	return Candidate{
		Name:     name,
		Quantity: 1,
		Price:    -abs(price),
		UsedNext: usedNext,
	}, true
}

// matchLabeled reads "Item: name" lines; the price comes from the catalog
func matchLabeled(text, _ string, _ bool) (Candidate, bool) {
	_, rest, ok := matchPrefixAnchor(text, itemLabels)
	if !ok || rest == "" {
		return Candidate{}, false
	}
	return Candidate{Name: rest, Quantity: 1}, true
}

// bareMatcher reads "Name 2". Names carrying a status word or a count
// label are summary lines, and quantities at or above maxBare are codes or
// prices.
func bareMatcher(statusWords []string, maxBare int) func(string, string, bool) (Candidate, bool) {
	words := make([]string, 0, len(statusWords))
	for _, w := range statusWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	return func(text, _ string, _ bool) (Candidate, bool) {
		m := reBare.FindStringSubmatch(trimBullet(text))
		if m == nil {
			return Candidate{}, false
		}
		name := strings.TrimSpace(m[1])
		if !reNameSafe.MatchString(name) || !hasLetter(name) || hasPrice(name) || isLabelWord(name) {
			return Candidate{}, false
		}
		if utf8.RuneCountInString(name) < minBareNameRunes || countLabel(name) {
			return Candidate{}, false
		}
		lower := strings.ToLower(name)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return Candidate{}, false
			}
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty >= maxBare || utf8.RuneCountInString(m[2]) > 3 {
			return Candidate{}, false
		}
		return Candidate{Name: name, Quantity: qty}, true
	}
}

// countLabel matches summary words printed with a bare number
func countLabel(name string) bool {
	switch compact(name) {
	case "총", "수량", "합계", "총수량", "총합계", "개수", "인원":
		return true
	}
	return false
}
