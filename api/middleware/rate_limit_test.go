package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingLimiter struct {
	counts map[string]int64
	err    error
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if c.err != nil {
		return false, 0, c.err
	}
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int64{}}
	handler := RateLimit(RateLimitPolicy{Name: "api", Limit: 2, Window: 15 * time.Minute}, limiter, nil)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
		if i == 2 && resp.Header().Get("Retry-After") != "900" {
			t.Fatalf("expected Retry-After 900, got %q", resp.Header().Get("Retry-After"))
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	other.Header.Set("X-Forwarded-For", "192.168.1.9, 10.0.0.1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, other)
	if resp.Code != http.StatusOK {
		t.Fatalf("different client should pass, got %d", resp.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	resp := httptest.NewRecorder()
	RateLimit(RateLimitPolicy{Limit: 1, Window: time.Minute}, limiter, nil)(okHandler()).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected request through on limiter error, got %d", resp.Code)
	}
}

func TestCORSAllowlist(t *testing.T) {
	handler := CORS("https://shop.gmchicks.co.ke/")(okHandler())
	cases := map[string]bool{
		"http://localhost:3000":               true,
		"https://gmchicks.vercel.app":         true,
		"https://gmchicks-git-pr7.vercel.app": true,
		"https://shop.gmchicks.co.ke":         true,
		"http://preview.vercel.app":           false,
		"https://evil.example.com":            false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Origin", origin)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		got := resp.Header().Get("Access-Control-Allow-Origin") == origin
		if got != want {
			t.Fatalf("origin %s: expected allowed=%v", origin, want)
		}
	}
}

type recordedObservation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	seen []recordedObservation
}

func (f *fakeObserver) Observe(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, recordedObservation{method, route, status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &fakeObserver{}
	handler := Metrics(observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	req := requestWithPattern(http.MethodGet, "/api/orders/123", "/api/orders/{orderId}", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if len(observer.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(observer.seen))
	}
	got := observer.seen[0]
	if got.route != "/api/orders/{orderId}" || got.status != http.StatusNotFound || got.method != http.MethodGet {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(requestIDHeader)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if seen != "req-123" || resp.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("request id not propagated: %q", seen)
	}

	fresh := httptest.NewRecorder()
	handler.ServeHTTP(fresh, httptest.NewRequest(http.MethodGet, "/", nil))
	if fresh.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}
