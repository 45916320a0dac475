package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := RateLimit(ctx, 0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := do("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other IP should have its own bucket, got %d", code)
	}
}

func TestEvictIdleVisitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := newIPRateLimiter(ctx, 1, 1)
	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	rl.mu.Lock()
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.evict(time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor should be evicted")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("active visitor should be kept")
	}
}
