package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/orderparse/internal/model"
)

// minReverseRunes is the shortest free-text name allowed to match inside a longer catalog name
const minReverseRunes = 2

// Index is a read-only view of the catalog ordered longest name first.
// It is safe for concurrent use.
type Index struct {
	entries []entry
}

type entry struct {
	product model.CatalogProduct
	key     string
	runes   int
}

// NewIndex builds an index over a copy of products
func NewIndex(products []model.CatalogProduct) *Index {
	entries := make([]entry, 0, len(products))
	for _, p := range products {
		key := NormalizeName(p.Name)
		if key == "" {
			continue
		}
		entries = append(entries, entry{
			product: p,
			key:     key,
			runes:   utf8.RuneCountInString(key),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].runes != entries[j].runes {
			return entries[i].runes > entries[j].runes
		}
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].product.ID < entries[j].product.ID
	})

	return &Index{entries: entries}
}

// NormalizeName removes whitespace and folds case
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Len returns the number of indexed products
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Products returns the indexed products, longest name first
func (x *Index) Products() []model.CatalogProduct {
	if x == nil {
		return nil
	}
	out := make([]model.CatalogProduct, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.product
	}
	return out
}

// ForDate returns the products that may match an order on date.
// Date-bound products are included only when date equals their target date.
func (x *Index) ForDate(date string) []model.CatalogProduct {
	if x == nil {
		return nil
	}
	var out []model.CatalogProduct
	for _, e := range x.entries {
		if eligible(e.product, date) {
			out = append(out, e.product)
		}
	}
	return out
}

// Match resolves a free-text item name against the catalog.
// Passes run longest name first: exact key, then the name containing a
// catalog name, then a catalog name containing the name.
func (x *Index) Match(name, date string) (model.CatalogProduct, bool) {
	if x == nil {
		return model.CatalogProduct{}, false
	}
	key := NormalizeName(name)
	if key == "" {
		return model.CatalogProduct{}, false
	}

	for _, e := range x.entries {
		if e.key == key && eligible(e.product, date) {
			return e.product, true
		}
	}
	for _, e := range x.entries {
		if strings.Contains(key, e.key) && eligible(e.product, date) {
			return e.product, true
		}
	}
	if utf8.RuneCountInString(key) < minReverseRunes {
		return model.CatalogProduct{}, false
	}
	for _, e := range x.entries {
		if strings.Contains(e.key, key) && eligible(e.product, date) {
			return e.product, true
		}
	}
	return model.CatalogProduct{}, false
}

// Fingerprint identifies the catalog contents for cache keys
func (x *Index) Fingerprint() string {
	h := sha256.New()
	if x != nil {
		for _, e := range x.entries {
			p := e.product
			fmt.Fprintf(h, "%d|%s|%d|%s|%s\n", p.ID, p.Name, p.Price, p.Type, p.TargetDate)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// eligible applies the date scope. Date-bound products never match blind.
func eligible(p model.CatalogProduct, date string) bool {
	if !p.Type.IsDateBound() {
		return true
	}
	return date != "" && p.TargetDate == date
}
