package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_BlocksExcessiveRequests(t *testing.T) {
	limiter := NewRateLimiter(5, time.Second)

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	blocked := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("POST", "/logs", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}

	if blocked != 5 {
		t.Errorf("Expected 5 of 10 requests blocked, got %d", blocked)
	}
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := NewRateLimiter(10, time.Second)

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/logs", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d should be allowed, got %d", i, rec.Code)
		}
	}
}

func TestRateLimiter_SeparateLimitsPerIP(t *testing.T) {
	limiter := NewRateLimiter(2, time.Second)

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"192.168.1.1:12345", "192.168.1.2:12345"} {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("POST", "/logs", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("%s request %d should be allowed, got %d", addr, i, rec.Code)
			}
		}
	}
}
