package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reDate = regexp.MustCompile(`(\d{4})\s*[./\-년]\s*(\d{1,2})\s*[./\-월]\s*(\d{1,2})`)

	reTimeMeridiemFirst = regexp.MustCompile(`(?i)(오전|오후|a\.?m\.?|p\.?m\.?)\s*(\d{1,2}):(\d{2})`)
	reTimeMeridiemLast  = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(a\.?m\.?|p\.?m\.?)`)
	reTimeKorean        = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})시\s*(?:(\d{1,2})분|(반))?`)
	reTime24            = regexp.MustCompile(`(?:^|[^\d])(\d{1,2}):(\d{2})(?:[^\d]|$)`)

	rePhone = regexp.MustCompile(`(?:^|[^\d])(01[016789])[-.\s]?(\d{3,4})[-.\s]?(\d{4})(?:[^\d]|$)`)

	reAmount    = regexp.MustCompile(`([-−])?\s*(\d{1,3}(?:,\d{3})+|\d+)`)
	rePrice     = regexp.MustCompile(`([-−]\s*)?(₩|(?i:krw))?\s*(\d{1,3}(?:,\d{3})+|\d+)\s*(원|(?i:won|krw))?`)
	rePriceLine = regexp.MustCompile(`^([-−]\s*)?(₩|(?i:krw))?\s*(\d{1,3}(?:,\d{3})+|\d+)\s*(원|(?i:won|krw))?$`)
	rePercent   = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
)

// MaxAmount is the largest amount read from text. Larger figures are
// rejected so that price × quantity sums stay within int64.
const MaxAmount int64 = 1_000_000_000_000

// NormalizeDate finds a "YYYY. M. D." style date and returns it as YYYY-MM-DD
func NormalizeDate(s string) (string, bool) {
	m := reDate.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// NormalizeTime finds a clock time and returns it as 24-hour HH:MM.
// 12 AM is 00, 12 PM stays 12, other PM hours add 12.
func NormalizeTime(s string) (string, bool) {
	if m := reTimeMeridiemFirst.FindStringSubmatch(s); m != nil {
		return clock(m[2], m[3], meridiem(m[1]))
	}
	if m := reTimeMeridiemLast.FindStringSubmatch(s); m != nil {
		return clock(m[1], m[2], meridiem(m[3]))
	}
	if m := reTime24.FindStringSubmatch(s); m != nil {
		return clock(m[1], m[2], "")
	}
	if m := reTimeKorean.FindStringSubmatch(s); m != nil {
		minute := m[3]
		if m[4] != "" {
			minute = "30"
		}
		if minute == "" {
			minute = "0"
		}
		return clock(m[2], minute, meridiem(m[1]))
	}
	return "", false
}

func meridiem(s string) string {
	switch strings.ToLower(strings.ReplaceAll(s, ".", "")) {
	case "오전", "am":
		return "am"
	case "오후", "pm":
		return "pm"
	}
	return ""
}

func clock(h, m, mer string) (string, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute > 59 {
		return "", false
	}
	switch mer {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}
	if hour > 23 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// FindPhone returns the first mobile number in s as 010-1234-5678
func FindPhone(s string) (string, bool) {
	m := rePhone.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2] + "-" + m[3], true
}

// ParseAmount reads the first integer in s, thousands separators allowed.
// Percent figures are ignored.
func ParseAmount(s string) (int64, bool) {
	s = rePercent.ReplaceAllString(s, " ")
	m := reAmount.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, ok := amount(m[2])
	if !ok {
		return 0, false
	}
	if m[1] != "" {
		n = -n
	}
	return n, true
}

// FindPrice returns the last amount in s carrying a currency marker
// (원, ₩, won, KRW).
func FindPrice(s string) (int64, bool) {
	var (
		price int64
		found bool
	)
	for _, loc := range rePrice.FindAllStringSubmatchIndex(s, -1) {
		prefix := group(s, loc, 2)
		suffix := group(s, loc, 4)
		if prefix == "" && suffix == "" {
			continue
		}
		if suffix != "" && suffix != "원" && startsWithLetter(s[loc[1]:]) {
			continue
		}
		n, ok := amount(group(s, loc, 3))
		if !ok {
			continue
		}
		if group(s, loc, 1) != "" {
			n = -n
		}
		price, found = n, true
	}
	return price, found
}

// IsPriceLine reports whether the whole line is a single price, as printed
// under an item in the template layout.
func IsPriceLine(s string) (int64, bool) {
	m := rePriceLine.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	if m[2] == "" && m[4] == "" && !strings.Contains(m[3], ",") {
		return 0, false
	}
	n, ok := amount(m[3])
	if !ok {
		return 0, false
	}
	if m[1] != "" {
		n = -n
	}
	return n, true
}

// readAmount prefers the currency-marked amount, so a count printed before
// the total ("(2건) 12,500원") is not taken for it.
func readAmount(s string) (int64, bool) {
	if n, ok := FindPrice(s); ok {
		return n, true
	}
	return ParseAmount(s)
}

func amount(digits string) (int64, bool) {
	n, err := strconv.ParseInt(strings.ReplaceAll(digits, ",", ""), 10, 64)
	if err != nil || n > MaxAmount {
		return 0, false
	}
	return n, true
}

func hasPrice(s string) bool {
	_, ok := FindPrice(s)
	return ok
}

func group(s string, loc []int, n int) string {
	if loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r < utf8.RuneSelf && unicode.IsLetter(r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
