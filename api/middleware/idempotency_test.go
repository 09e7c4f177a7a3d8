package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func orderRequest(key, body string) *http.Request {
	req := requestWithPattern(http.MethodPost, "/api/orders", "/api/orders/", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	return payload.Error.Code
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{http.MethodPost, "/api/orders", ordersTTL, true},
		{http.MethodPost, "/api/orders/", ordersTTL, true},
		{http.MethodPost, "/api/payments/initiate", paymentsTTL, true},
		{http.MethodGet, "/api/orders", 0, false},
		{http.MethodPost, "/api/cart", 0, false},
	}
	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok || ttl != tt.want {
			t.Fatalf("%s %s: expected (%v,%v) got (%v,%v)", tt.method, tt.pattern, tt.want, tt.ok, ttl, ok)
		}
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	resp := httptest.NewRecorder()
	Idempotency(newFakeStore(), nil)(handler).ServeHTTP(resp, orderRequest("", `{}`))
	if resp.Code != http.StatusBadRequest || called {
		t.Fatalf("expected 400 without handler, got %d called=%v", resp.Code, called)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_number":"GM-20260314-ABCDEF"}}`))
	})

	first := httptest.NewRecorder()
	mw(handler).ServeHTTP(first, orderRequest("abc", `{"items":[]}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	mw(handler).ServeHTTP(replay, orderRequest("abc", `{"items":[]}`))
	if replay.Code != http.StatusCreated || replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed 201 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type preserved")
	}
	if !strings.Contains(replay.Body.String(), "GM-20260314-ABCDEF") {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for _, ttl := range store.ttls {
		if ttl != ordersTTL {
			t.Fatalf("expected order ttl, got %v", ttl)
		}
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	mw := Idempotency(newFakeStore(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mw(handler).ServeHTTP(httptest.NewRecorder(), orderRequest("xyz", `{"a":1}`))

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, orderRequest("xyz", `{"a":2}`))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := errorCode(t, resp.Body.Bytes()); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var nested *httptest.ResponseRecorder
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if nested == nil {
			nested = httptest.NewRecorder()
			mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("duplicate should not reach the handler")
			})).ServeHTTP(nested, orderRequest("dup", `{}`))
		}
		w.WriteHeader(http.StatusCreated)
	})
	mw(handler).ServeHTTP(httptest.NewRecorder(), orderRequest("dup", `{}`))
	if nested.Code != http.StatusConflict {
		t.Fatalf("expected 409 for in-flight duplicate got %d", nested.Code)
	}
	if code := errorCode(t, nested.Body.Bytes()); code != string(pkgerrors.CodeConflict) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeConflict, code)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mw(handler).ServeHTTP(httptest.NewRecorder(), orderRequest("retry", `{}`))
	if len(store.data) != 0 {
		t.Fatalf("expected key released, store has %v", store.data)
	}
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, orderRequest("retry", `{}`))
	if resp.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("expected retry to run handler, got %d calls=%d", resp.Code, calls)
	}
}

func TestIdempotencySkipsOtherRoutes(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	req := requestWithPattern(http.MethodPost, "/api/cart", "/api/cart/", strings.NewReader(`{}`))
	Idempotency(newFakeStore(), nil)(handler).ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("handler not called for non-idempotent route")
	}
}
