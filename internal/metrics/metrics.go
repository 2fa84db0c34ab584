package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the orderparse collectors on a private prometheus registry
type Registry struct {
	reg *prometheus.Registry

	OrdersParsed  *prometheus.CounterVec // by layout, cached
	ParseErrors   prometheus.Counter
	ParseSeconds  prometheus.Histogram
	ItemsPerOrder prometheus.Histogram
	ReviewSignals *prometheus.CounterVec // by type, severity
	NeedsReview   prometheus.Counter

	BatchFiles   *prometheus.CounterVec // by outcome
	HTTPRequests *prometheus.CounterVec // by route, code
	RateLimited  prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	ordersParsed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderparse_orders_parsed_total",
		Help: "Orders parsed, by detected layout and cache use.",
	}, []string{"layout", "cached"})
	parseErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderparse_parse_errors_total",
		Help: "Sources that could not be read or were empty.",
	})
	parseSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderparse_parse_seconds",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	})
	itemsPerOrder := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderparse_items_per_order",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
	reviewSignals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderparse_review_signals_total",
	}, []string{"type", "severity"})
	needsReview := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderparse_needs_review_total"})

	batchFiles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderparse_batch_files_total",
	}, []string{"outcome"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderparse_http_requests_total",
	}, []string{"route", "code"})
	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderparse_http_rate_limited_total"})

	r.MustRegister(ordersParsed, parseErrors, parseSeconds, itemsPerOrder, reviewSignals, needsReview, batchFiles, httpRequests, rateLimited)
	return &Registry{
		reg:           r,
		OrdersParsed:  ordersParsed,
		ParseErrors:   parseErrors,
		ParseSeconds:  parseSeconds,
		ItemsPerOrder: itemsPerOrder,
		ReviewSignals: reviewSignals,
		NeedsReview:   needsReview,
		BatchFiles:    batchFiles,
		HTTPRequests:  httpRequests,
		RateLimited:   rateLimited,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Gatherer exposes the underlying registry, mostly for tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
