package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AnTengye/contractgen/backend/pkg/metrics"
)

func limitedRouter(handler gin.HandlerFunc, paths ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.Use(handler)
	for _, p := range paths {
		router.GET(p, func(c *gin.Context) { c.Status(http.StatusOK) })
	}
	return router
}

func get(router *gin.Engine, path, client string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if client != "" {
		req.Header.Set("X-Forwarded-For", client)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	router := limitedRouter(RateLimit(3, time.Minute), "/api/v1/prints")
	before := testutil.ToFloat64(metrics.RateLimited)

	for i := 0; i < 3; i++ {
		if w := get(router, "/api/v1/prints", "192.168.1.1"); w.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, w.Code)
		}
	}

	w := get(router, "/api/v1/prints", "192.168.1.1")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Expected Retry-After 60, got %q", got)
	}
	if got := testutil.ToFloat64(metrics.RateLimited) - before; got != 1 {
		t.Errorf("Expected 1 rejection counted, got %v", got)
	}

	if w := get(router, "/api/v1/prints", "10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("Different client should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimitExemptAndDisabled(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		path    string
	}{
		{"health check", RateLimit(1, time.Minute, "/health", "/metrics"), "/health"},
		{"metrics scrape", RateLimit(1, time.Minute, "/health", "/metrics"), "/metrics"},
		{"disabled", RateLimit(0, time.Minute), "/api/v1/templates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := limitedRouter(tt.handler, tt.path)
			for i := 0; i < 3; i++ {
				if w := get(router, tt.path, ""); w.Code != http.StatusOK {
					t.Errorf("Request %d: Expected status 200, got %d", i+1, w.Code)
				}
			}
		})
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if ok, _ := limiter.Allow("a"); !ok {
		t.Fatal("Expected first request to pass")
	}
	now = now.Add(20 * time.Second)
	ok, retry := limiter.Allow("a")
	if ok {
		t.Fatal("Expected second request to be limited")
	}
	if retry != 40*time.Second {
		t.Errorf("Expected retry in 40s, got %v", retry)
	}

	now = now.Add(40 * time.Second)
	if ok, _ := limiter.Allow("a"); !ok {
		t.Error("Expected request to pass after the window")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < pruneAt; i++ {
		limiter.Allow(time.Duration(i).String())
	}
	now = now.Add(2 * time.Minute)
	limiter.Allow("late")

	if len(limiter.clients) != 1 {
		t.Errorf("Expected expired clients pruned, got %d tracked", len(limiter.clients))
	}
}
