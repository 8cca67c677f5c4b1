package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryCounter_FixedWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCounter()
	c.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		if got, _ := c.Incr(context.Background(), "k", time.Minute); got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	now = now.Add(2 * time.Minute)
	if got, _ := c.Incr(context.Background(), "k", time.Minute); got != 1 {
		t.Errorf("expected a fresh window, got %d", got)
	}
}

func TestMemoryCounter_DropsExpiredKeys(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCounter()
	c.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		_, _ = c.Incr(context.Background(), fmt.Sprintf("ip:10.0.0.%d", i), time.Minute)
	}

	now = now.Add(2 * time.Minute)
	_, _ = c.Incr(context.Background(), "ip:10.0.1.1", time.Minute)

	if n := len(c.windows); n != 1 {
		t.Errorf("expired windows should be swept, %d left", n)
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(NewMemoryCounter(), RateLimitConfig{Requests: 2, Window: time.Minute})
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes %v", codes)
	}
}
