package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveFrom(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/shared/abc", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_PerClient(t *testing.T) {
	l := NewRateLimiter(1, 2)
	clock := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	h := l.Handler(&dummyHandler{})

	for i := 0; i < 2; i++ {
		if rec := serveFrom(h, "10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d; want 200", i, rec.Code)
		}
	}
	rec := serveFrom(h, "10.0.0.1:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d; want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q; want 1", got)
	}

	if rec := serveFrom(h, "10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d; want 200", rec.Code)
	}

	clock = clock.Add(time.Second)
	if rec := serveFrom(h, "10.0.0.1:5000"); rec.Code != http.StatusOK {
		t.Errorf("after refill status = %d; want 200", rec.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := NewRateLimiter(0, 0).Handler(&dummyHandler{})
	for i := 0; i < 50; i++ {
		if rec := serveFrom(h, "10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d; want 200", i, rec.Code)
		}
	}
}
