// Package extract turns pasted reservation text and notification email
// bodies into structured orders.
//
// The engine runs a fixed chain of stages over the split lines: layout
// detection, section classification, field extraction, contact scan, item
// recognition, dedupe, catalog resolution and reconciliation. Each stage
// reads the ClaimedSet built so far and never a line it holds. Field stages
// return only their own claims, which are merged in; a line consumed by one
// stage is never read by a later one.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/orderparse/internal/catalog"
	"github.com/ppiankov/orderparse/internal/model"
)

// Engine parses order text. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	statusWords []string
	maxBare     int
	rules       []LineRule
}

// Option configures an Engine
type Option func(*Engine)

// WithStatusWords replaces the deny-list that keeps status lines such as
// "접수 3" from being read as bare-quantity items.
func WithStatusWords(words ...string) Option {
	return func(e *Engine) {
		e.statusWords = append([]string(nil), words...)
	}
}

// WithMaxBareQuantity sets the exclusive bound for bare quantities.
// Values outside 1..1000 are ignored.
func WithMaxBareQuantity(n int) Option {
	return func(e *Engine) {
		if n > 0 && n <= maxParenQuantity {
			e.maxBare = n
		}
	}
}

// NewEngine creates an engine with the default deny-list and bounds
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		statusWords: append([]string(nil), model.DefaultStatusWords...),
		maxBare:     model.DefaultMaxBareQuantity,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = newRules(e.statusWords, e.maxBare)
	return e
}

// Result is a parsed order together with what the engine saw on the way
type Result struct {
	Order      model.ParsedOrder
	Layout     Layout
	Lines      []RawLine
	Sections   []Section
	Claimed    ClaimedSet
	Candidates []Candidate
}

// Parse is the single entry point: raw text plus a catalog snapshot in,
// order out. It never fails; unreadable input yields an empty order.
func (e *Engine) Parse(raw string, products []model.CatalogProduct) model.ParsedOrder {
	return e.Run(raw, catalog.NewIndex(products)).Order
}

// Run parses against a prepared catalog index. Callers parsing many texts
// against one snapshot build the index once and share it.
func (e *Engine) Run(raw string, idx *catalog.Index) Result {
	order := model.NewParsedOrder()
	lines := SplitLines(raw)
	layout := DetectLayout(lines)

	sections, claimed := Classify(lines, layout, NewClaimedSet())
	for _, fx := range fieldPasses(layout, e.rules) {
		claimed = claimed.Merge(fx.Extract(lines, sections, claimed, &order))
	}
	claimed = claimed.Merge(scanContact(lines, claimed, &order))

	candidates, claimed := ExtractItems(lines, claimed, e.rules)
	order.Items = Resolve(Dedupe(candidates), idx, order.Date)
	order = Reconcile(order)

	return Result{
		Order:      order,
		Layout:     layout,
		Lines:      lines,
		Sections:   sections,
		Claimed:    claimed,
		Candidates: candidates,
	}
}

// Signature identifies the engine options, for cache keys
func (e *Engine) Signature() string {
	words := append([]string(nil), e.statusWords...)
	sort.Strings(words)
	return fmt.Sprintf("status=%s;max_bare=%d", strings.Join(words, ","), e.maxBare)
}

var defaultEngine = NewEngine()

// Parse runs the default engine
func Parse(raw string, products []model.CatalogProduct) model.ParsedOrder {
	return defaultEngine.Parse(raw, products)
}
