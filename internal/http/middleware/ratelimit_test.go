package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitRefill(t *testing.T) {
	l := newIPLimiter(1, 2)
	now := time.Unix(1000, 0)

	if !l.allow("10.0.0.1", now) || !l.allow("10.0.0.1", now) {
		t.Fatal("burst requests denied")
	}
	if l.allow("10.0.0.1", now) {
		t.Fatal("request beyond burst allowed")
	}
	if l.allow("10.0.0.1", now.Add(500*time.Millisecond)) {
		t.Error("allowed before a full token refilled")
	}
	if !l.allow("10.0.0.1", now.Add(1500*time.Millisecond)) {
		t.Error("denied after a token refilled")
	}
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	handler := RateLimit(0.001, 2)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	handler := RateLimit(0.001, 1)(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.Header.Set("X-Real-Ip", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("first request from %s status = %d", ip, rec.Code)
		}
	}
}
