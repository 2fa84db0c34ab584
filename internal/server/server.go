package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/ppiankov/orderparse/internal/metrics"
	"github.com/ppiankov/orderparse/internal/model"
	"github.com/ppiankov/orderparse/internal/pipeline"
	"github.com/ppiankov/orderparse/internal/worker"
)

// Server is the HTTP surface over a Pipeline
type Server struct {
	engine   *gin.Engine
	pipeline *pipeline.Pipeline
	limiter  *worker.Limiter
	metrics  *metrics.Registry
	logger   *slog.Logger
	cfg      model.ServerConfig
}

// NewServer wires routes and middleware. reg and logger may be nil.
func NewServer(p *pipeline.Pipeline, cfg model.ServerConfig, reg *metrics.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = pipeline.DefaultMaxSourceBytes
	}

	r := gin.New()
	r.Use(gin.Recovery())
	s := &Server{
		engine:   r,
		pipeline: p,
		limiter:  worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		metrics:  reg,
		logger:   logger,
		cfg:      cfg,
	}
	for _, cr := range cfg.ClientRates {
		s.limiter.SetKeyRate(cr.Client, cr.RequestsPerSecond)
	}
	r.Use(s.observe())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/parse", s.rateLimit(), s.parse)
		v1.GET("/catalog", s.listCatalog)
	}
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.limiter.SweepEvery(sweepCtx, time.Minute, 10*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server.stopped")
	return nil
}

// observe counts requests by route and status
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		s.logger.Debug("http.request",
			"method", c.Request.Method,
			"route", route,
			"code", code,
			"client", c.ClientIP(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

// rateLimit applies the per-client token bucket
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			s.metrics.RateLimited.Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"products": s.pipeline.Catalog().Len(),
	})
}

type parseReq struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	HTML   bool   `json:"html"`
}

// parse accepts the order text as the raw body (text/plain or text/html)
// or as {"text": ...} JSON.
func (s *Server) parse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}

	req := parseReq{Text: string(body), Source: "http"}
	switch contentType := c.ContentType(); {
	case contentType == "application/json":
		if err := binding.JSON.BindBody(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Source == "" {
			req.Source = "http"
		}
	case contentType == "text/html":
		req.HTML = true
	}

	src, err := pipeline.NewSource(req.Source, req.Text, req.HTML)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}

	report, err := s.pipeline.Parse(c.Request.Context(), src)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// listCatalog returns the catalog snapshot; ?date=YYYY-MM-DD narrows it to
// products orderable that day.
func (s *Server) listCatalog(c *gin.Context) {
	idx := s.pipeline.Catalog()
	products := idx.Products()
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		products = idx.ForDate(date)
	}
	c.JSON(http.StatusOK, gin.H{
		"fingerprint": idx.Fingerprint(),
		"count":       len(products),
		"products":    products,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrEmptySource):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
