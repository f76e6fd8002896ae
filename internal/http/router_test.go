package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-countries-backend/internal/config"
	"github.com/tbourn/go-countries-backend/internal/domain"
	"github.com/tbourn/go-countries-backend/internal/repo"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("router_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.SeedRefreshMetadata(db); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}

	cfg := config.Config{
		Port:         "0",
		GinMode:      gin.TestMode,
		APIBasePath:  "/",
		DBPath:       dsn,
		SummaryImage: filepath.Join(t.TempDir(), "summary.png"),
		Sources: config.SourcesConfig{
			CountriesURL: "http://127.0.0.1:0/countries",
			RatesURL:     "http://127.0.0.1:0/rates",
			FetchTimeout: time.Second,
		},
		RateRPS:   1000,
		RateBurst: 1000,
		OTEL:      config.OTELConfig{ServiceName: "router-test"},
	}

	r := gin.New()
	RegisterRoutes(r, db, cfg)
	return r, db
}

func do(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouter_RequestIDHeaderIsSet(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/health")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected an X-Request-ID header")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "not_found" {
		t.Fatalf("expected not_found envelope, got %s", w.Body.String())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodPut, "/countries")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "method_not_allowed" {
		t.Fatalf("expected method_not_allowed envelope, got %s", w.Body.String())
	}
}

func TestRouter_ListCountriesOnEmptyTable(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/countries")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var items []domain.Country
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v (body: %s)", err, w.Body.String())
	}
	if len(items) != 0 {
		t.Fatalf("expected an empty list, got %d items", len(items))
	}
}

func TestRouter_ListCountriesETagRoundTrip(t *testing.T) {
	r, db := newRouter(t)
	seed := domain.Country{Name: "France", Region: "Europe", Population: 1,
		LastRefreshedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := do(t, r, http.MethodGet, "/countries")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag on the unfiltered listing")
	}

	req := httptest.NewRequest(http.MethodGet, "/countries", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304 on matching If-None-Match, got %d", w.Code)
	}
}

func TestRouter_StatusOnFreshDatabase(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		TotalCountries int64 `json:"total_countries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalCountries != 0 {
		t.Fatalf("expected 0 countries, got %d", resp.TotalCountries)
	}
}

func TestRouter_SummaryImageMissing(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/countries/image")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any refresh, got %d", w.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
