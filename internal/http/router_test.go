package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/config"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/services"
)

func newRouterEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
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
	if err := db.AutoMigrate(&domain.Request{}, &domain.Category{}, &domain.ModerationLog{}, &domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.RateRPS = 1000 // don't throttle the test loop
	cfg.RateBurst = 1000

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, db, cache.New(), cfg)
	return r, db
}

func TestRouter_HealthAndFallbacks(t *testing.T) {
	r, _ := newRouterEnv(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("404 must be JSON: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("404 envelope: %v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method fallback: %d", w.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newRouterEnv(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestRouter_BoardReadEndToEnd(t *testing.T) {
	r, db := newRouterEnv(t)

	// Seed a member and one request through the persistence layer.
	if err := db.Create(&domain.User{ID: "member"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	req := domain.Request{
		ID: "r1", Type: domain.BoardPrayer, Status: domain.StatusActive,
		Description: "pray for me", Response: domain.NewResponseState(domain.BoardPrayer),
		OwnerID: "member", CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodGet, "/api/v1/boards/prayer", nil)
	httpReq.Header.Set("X-User-ID", "member")
	r.ServeHTTP(w, httpReq)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var page services.BoardPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != "r1" {
		t.Fatalf("page: %+v", page)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}
	if w.Header().Get("ETag") == "" {
		t.Fatal("ETag missing on unfiltered board read")
	}
}

func TestRouter_ConditionalBoardRead(t *testing.T) {
	r, db := newRouterEnv(t)

	if err := db.Create(&domain.User{ID: "member"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	get := func(etag string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/boards/need", nil)
		req.Header.Set("X-User-ID", "member")
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
		r.ServeHTTP(w, req)
		return w
	}

	first := get("")
	if first.Code != http.StatusOK {
		t.Fatalf("first read: %d", first.Code)
	}
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on first read")
	}

	second := get(etag)
	if second.Code != http.StatusNotModified {
		t.Fatalf("matching If-None-Match: %d", second.Code)
	}

	// A write moves the scope; the old tag stops matching.
	req := domain.Request{
		ID: "n1", Type: domain.BoardNeed, Status: domain.StatusActive,
		Description: "need a ride", Response: domain.NewResponseState(domain.BoardNeed),
		OwnerID: "member", CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	third := get(etag)
	if third.Code != http.StatusOK {
		t.Fatalf("stale If-None-Match: %d", third.Code)
	}
}
