package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/orderparse/internal/cache"
	"github.com/ppiankov/orderparse/internal/catalog"
	"github.com/ppiankov/orderparse/internal/extract"
	"github.com/ppiankov/orderparse/internal/metrics"
	"github.com/ppiankov/orderparse/internal/model"
	"github.com/ppiankov/orderparse/internal/review"
)

// Pipeline orchestrates one parse: cache lookup, engine run, review and
// report assembly. The catalog snapshot is fixed for the pipeline's life,
// so one Pipeline can serve many goroutines.
type Pipeline struct {
	engine      *extract.Engine
	index       *catalog.Index
	fingerprint string
	reviewer    *review.Reviewer
	cache       *cache.Store
	renderer    *Renderer
	metrics     *metrics.Registry
	logger      *slog.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithMetrics records parse metrics on reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(p *Pipeline) { p.metrics = reg }
}

// WithLogger sets the logger; slog.Default is used otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline over a catalog snapshot
func NewPipeline(cfg *model.Config, products []model.CatalogProduct, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	var engineOpts []extract.Option
	if len(cfg.Extract.StatusWords) > 0 {
		engineOpts = append(engineOpts, extract.WithStatusWords(cfg.Extract.StatusWords...))
	}
	if cfg.Extract.MaxBareQuantity > 0 {
		engineOpts = append(engineOpts, extract.WithMaxBareQuantity(cfg.Extract.MaxBareQuantity))
	}

	index := catalog.NewIndex(products)
	p := &Pipeline{
		engine:      extract.NewEngine(engineOpts...),
		index:       index,
		fingerprint: index.Fingerprint(),
		reviewer:    review.NewReviewer(),
		cache:       cache.NewStore(cfg.Cache),
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the catalog snapshot the pipeline resolves against
func (p *Pipeline) Catalog() *catalog.Index {
	return p.index
}

// Cache returns the parse cache, nil when disabled
func (p *Pipeline) Cache() *cache.Store {
	return p.cache
}

// Parse runs one source through the engine and wraps the order in a report
func (p *Pipeline) Parse(ctx context.Context, src *Source) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	p.logger.Debug("parse.start", "source", src.Name, "html", src.IsHTML, "bytes", len(src.Text))

	key := cache.Key(src.Text, p.fingerprint, p.engine.Signature())

	// 1. Cache
	entry, cached := p.cache.Lookup(key)

	// 2. Engine
	if !cached {
		res := p.engine.Run(src.Text, p.index)
		entry = cache.Entry{Layout: res.Layout.String(), Order: res.Order}
		if err := p.cache.Save(key, entry); err != nil {
			// a cache failure never fails the parse
			p.logger.Warn("cache.save.error", "source", src.Name, "error", err)
		}
	}

	// 3. Review
	verdict := p.reviewer.Review(entry.Order)

	report := &model.Report{
		ID:       uuid.NewString(),
		Source:   src.Name,
		ParsedAt: time.Now().UTC(),
		Cached:   cached,
		Layout:   entry.Layout,
		Order:    entry.Order,
		Review:   verdict,
	}

	elapsed := time.Since(start)
	p.observe(report, elapsed)
	p.logger.Info("parse.ok",
		"report_id", report.ID,
		"source", src.Name,
		"layout", report.Layout,
		"items", len(report.Order.Items),
		"cached", cached,
		"needs_review", verdict.NeedsReview,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return report, nil
}

// ParseText is Parse for text already in memory
func (p *Pipeline) ParseText(ctx context.Context, name, text string) (*model.Report, error) {
	src, err := NewSource(name, text, false)
	if err != nil {
		p.failed(name, err)
		return nil, err
	}
	return p.Parse(ctx, src)
}

// ParseFile reads a file (or stdin for "-") and parses it
func (p *Pipeline) ParseFile(ctx context.Context, path string) (*model.Report, error) {
	src, err := ReadSource(path, DefaultMaxSourceBytes)
	if err != nil {
		p.failed(path, err)
		return nil, fmt.Errorf("read source: %w", err)
	}
	return p.Parse(ctx, src)
}

// RenderReport renders the report to the requested files and prints the
// summary to w.
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	// Render JSON
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(w, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	// Render Markdown
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(w, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, report)
	return nil
}

func (p *Pipeline) failed(name string, err error) {
	p.logger.Warn("parse.error", "source", name, "error", err)
	if p.metrics != nil {
		p.metrics.ParseErrors.Inc()
	}
}

func (p *Pipeline) observe(report *model.Report, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.OrdersParsed.WithLabelValues(report.Layout, strconv.FormatBool(report.Cached)).Inc()
	p.metrics.ParseSeconds.Observe(elapsed.Seconds())
	p.metrics.ItemsPerOrder.Observe(float64(len(report.Order.Items)))
	for _, s := range report.Review.Signals {
		p.metrics.ReviewSignals.WithLabelValues(string(s.Type), string(s.Severity)).Inc()
	}
	if report.Review.NeedsReview {
		p.metrics.NeedsReview.Inc()
	}
}
