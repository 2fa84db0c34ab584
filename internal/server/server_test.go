package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/orderparse/internal/metrics"
	"github.com/ppiankov/orderparse/internal/model"
	"github.com/ppiankov/orderparse/internal/pipeline"
)

const looseOrder = `이름: 김철수
전화 010-2222-3333
2026-01-30 오전 11:00
Kimchi 2
Daily Soup 1`

func setupServer(t *testing.T, serverCfg model.ServerConfig) (*Server, *metrics.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	products := []model.CatalogProduct{
		{ID: 1, Name: "Kimchi", Price: 5000, Type: model.ProductRegular},
		{ID: 2, Name: "Daily Soup", Price: 3500, Type: model.ProductDaily, TargetDate: "2026-01-30"},
		{ID: 3, Name: "Holiday Box", Price: 30000, Type: model.ProductSpecial, TargetDate: "2026-02-14"},
	}
	reg := metrics.NewRegistry()
	p := pipeline.NewPipeline(cfg, products, pipeline.WithLogger(logger), pipeline.WithMetrics(reg))
	return NewServer(p, serverCfg, reg, logger), reg
}

func do(t *testing.T, s *Server, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) model.Report {
	t.Helper()
	var report model.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	return report
}

func TestParse_PlainText(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{})

	w := do(t, s, http.MethodPost, "/api/v1/parse", "text/plain; charset=utf-8", []byte(looseOrder))
	if w.Code != http.StatusOK {
		t.Fatalf("parse code %v: %s", w.Code, w.Body.String())
	}

	report := decodeReport(t, w)
	if report.Source != "http" {
		t.Errorf("Expected source http, got %s", report.Source)
	}
	if len(report.Order.Items) != 2 {
		t.Fatalf("Expected 2 items, got %+v", report.Order.Items)
	}
	if report.Order.DerivedTotal != 13500 {
		t.Errorf("Expected derived total 13500, got %d", report.Order.DerivedTotal)
	}
}

func TestParse_JSON(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{})

	body, _ := json.Marshal(map[string]any{"text": looseOrder, "source": "kakao"})
	w := do(t, s, http.MethodPost, "/api/v1/parse", "application/json", body)
	if w.Code != http.StatusOK {
		t.Fatalf("parse code %v: %s", w.Code, w.Body.String())
	}

	report := decodeReport(t, w)
	if report.Source != "kakao" {
		t.Errorf("Expected source kakao, got %s", report.Source)
	}
	if report.Order.CustomerName != "김철수" {
		t.Errorf("Expected customer name, got %q", report.Order.CustomerName)
	}
}

func TestParse_HTML(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{})

	body := []byte("<p>Kimchi 2</p><script>var x = 1;</script>")
	w := do(t, s, http.MethodPost, "/api/v1/parse", "text/html", body)
	if w.Code != http.StatusOK {
		t.Fatalf("parse code %v: %s", w.Code, w.Body.String())
	}
	report := decodeReport(t, w)
	if len(report.Order.Items) != 1 || report.Order.Items[0].Price != 5000 {
		t.Errorf("Expected priced Kimchi, got %+v", report.Order.Items)
	}
}

func TestParse_Errors(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{MaxBodyBytes: 64})

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{"empty", "text/plain", "   ", http.StatusBadRequest},
		{"bad json", "application/json", "{", http.StatusBadRequest},
		{"empty json text", "application/json", `{"text": ""}`, http.StatusBadRequest},
		{"too large", "text/plain", strings.Repeat("Kimchi 2\n", 20), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/parse", tt.contentType, []byte(tt.body))
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestParse_RateLimited(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{RequestsPerSecond: 0.01, BurstSize: 1})

	w := do(t, s, http.MethodPost, "/api/v1/parse", "text/plain", []byte("Kimchi 2"))
	if w.Code != http.StatusOK {
		t.Fatalf("first request code %v", w.Code)
	}
	w = do(t, s, http.MethodPost, "/api/v1/parse", "text/plain", []byte("Kimchi 2"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %v", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// health is not rate limited
	w = do(t, s, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health code %v", w.Code)
	}

	metricsW := do(t, s, http.MethodGet, "/metrics", "", nil)
	if !strings.Contains(metricsW.Body.String(), "orderparse_http_rate_limited_total 1") {
		t.Errorf("Expected rate-limited counter in metrics output")
	}
}

func TestParse_ClientRateOverride(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{
		RequestsPerSecond: 0.01,
		BurstSize:         1,
		ClientRates:       []model.ClientRate{{Client: "192.0.2.1", RequestsPerSecond: 0}},
	})

	for i := 0; i < 3; i++ {
		w := do(t, s, http.MethodPost, "/api/v1/parse", "text/plain", []byte("Kimchi 2"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 for exempt client, got %d", i, w.Code)
		}
	}
}

func TestCatalog(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{})

	var resp struct {
		Fingerprint string                 `json:"fingerprint"`
		Count       int                    `json:"count"`
		Products    []model.CatalogProduct `json:"products"`
	}

	w := do(t, s, http.MethodGet, "/api/v1/catalog", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("catalog code %v", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 || resp.Fingerprint == "" {
		t.Errorf("Expected 3 products with fingerprint, got %+v", resp)
	}

	w = do(t, s, http.MethodGet, "/api/v1/catalog?date=2026-01-30", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Errorf("Expected regular + daily product on 2026-01-30, got %+v", resp.Products)
	}

	w = do(t, s, http.MethodGet, "/api/v1/catalog?date=30.01.2026", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad date, got %v", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := setupServer(t, model.ServerConfig{})

	w := do(t, s, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"products":3`) {
		t.Errorf("unexpected health response %v: %s", w.Code, w.Body.String())
	}

	do(t, s, http.MethodPost, "/api/v1/parse", "text/plain", []byte("Kimchi 2"))
	w = do(t, s, http.MethodGet, "/metrics", "", nil)
	body := w.Body.String()
	for _, want := range []string{
		`orderparse_http_requests_total{code="200",route="/api/v1/parse"} 1`,
		`orderparse_orders_parsed_total{cached="false",layout="loose"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in metrics output", want)
		}
	}
}
