package extract

import (
	"sort"
	"strings"
)

// RawLine is one trimmed, non-empty input line.
// Index is its position in the split sequence, not in the raw text.
type RawLine struct {
	Index int
	Text  string
}

// SplitLines normalizes line endings and whitespace and drops blank lines
func SplitLines(raw string) []RawLine {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []RawLine
	for _, l := range strings.Split(raw, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			continue
		}
		lines = append(lines, RawLine{Index: len(lines), Text: l})
	}
	return lines
}

// ClaimedSet records which lines have been consumed and by which rule.
// Stages never mutate the set they are given: they clone it, claim on the
// clone and return it.
type ClaimedSet struct {
	owners map[int]string
}

// NewClaimedSet returns an empty set
func NewClaimedSet() ClaimedSet {
	return ClaimedSet{owners: make(map[int]string)}
}

// Has reports whether line i is claimed
func (c ClaimedSet) Has(i int) bool {
	_, ok := c.owners[i]
	return ok
}

// Owner returns the rule that claimed line i
func (c ClaimedSet) Owner(i int) (string, bool) {
	rule, ok := c.owners[i]
	return rule, ok
}

// Len returns the number of claimed lines
func (c ClaimedSet) Len() int {
	return len(c.owners)
}

// Indices returns the claimed line indices in ascending order
func (c ClaimedSet) Indices() []int {
	out := make([]int, 0, len(c.owners))
	for i := range c.owners {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy
func (c ClaimedSet) Clone() ClaimedSet {
	out := ClaimedSet{owners: make(map[int]string, len(c.owners))}
	for i, rule := range c.owners {
		out.owners[i] = rule
	}
	return out
}

// Merge returns the union of both sets. The first owner of a line wins.
func (c ClaimedSet) Merge(other ClaimedSet) ClaimedSet {
	out := c.Clone()
	for i, rule := range other.owners {
		if _, ok := out.owners[i]; !ok {
			out.owners[i] = rule
		}
	}
	return out
}

// since returns the claims in c that base does not hold
func (c ClaimedSet) since(base ClaimedSet) ClaimedSet {
	out := NewClaimedSet()
	for i, rule := range c.owners {
		if _, ok := base.owners[i]; !ok {
			out.owners[i] = rule
		}
	}
	return out
}

// claim marks line i for rule. It refuses lines that already have an owner.
func (c ClaimedSet) claim(i int, rule string) bool {
	if c.owners == nil {
		return false
	}
	if _, ok := c.owners[i]; ok {
		return false
	}
	c.owners[i] = rule
	return true
}

// nextUnclaimed returns the line right after i if it exists and is free
func nextUnclaimed(lines []RawLine, claimed ClaimedSet, i int) (RawLine, bool) {
	j := i + 1
	if j >= len(lines) || claimed.Has(j) {
		return RawLine{}, false
	}
	return lines[j], true
}
