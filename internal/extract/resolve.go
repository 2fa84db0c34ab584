package extract

import (
	"github.com/ppiankov/orderparse/internal/catalog"
	"github.com/ppiankov/orderparse/internal/model"
)

// Dedupe merges candidates by normalized name. A priced candidate replaces
// an unpriced one; otherwise the first seen wins. Groups keep the position
// of their first member.
func Dedupe(candidates []Candidate) []Candidate {
	index := make(map[string]int)
	var out []Candidate

	for _, c := range candidates {
		key := catalog.NormalizeName(c.Name)
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		if out[at].Price == 0 && c.Price != 0 {
			out[at] = c
		}
	}
	return out
}

// Resolve turns candidates into order items, replacing name and price with
// the catalog's when a product matches. Catalog prices above MaxAmount are
// not taken. Discount pseudo-items are never resolved. The result is never nil.
func Resolve(candidates []Candidate, idx *catalog.Index, date string) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(candidates))
	for _, c := range candidates {
		item := model.OrderItem{
			Name:     c.Name,
			Quantity: c.Quantity,
			Price:    c.Price,
			Rule:     c.Rule,
		}
		if c.Rule != model.RuleDiscount {
			if p, ok := idx.Match(c.Name, date); ok {
				item.Name = p.Name
				item.ProductID = p.ID
				if p.Price <= MaxAmount {
					item.Price = p.Price
				}
			}
		}
		items = append(items, item)
	}
	return items
}
