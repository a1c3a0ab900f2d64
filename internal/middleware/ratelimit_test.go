package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for the limiter.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Second)

	for i := range 3 {
		if ok, _ := rl.allow("actor:u1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, wait := rl.allow("actor:u1"); ok || wait != time.Second {
		t.Errorf("4th request: allowed=%v wait=%v", ok, wait)
	}
	if ok, _ := rl.allow("actor:u2"); !ok {
		t.Error("different caller should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, time.Minute)

	rl.allow("k")
	clock.Advance(20 * time.Second)
	rl.allow("k")

	if ok, wait := rl.allow("k"); ok || wait != 40*time.Second {
		t.Errorf("allowed=%v wait=%v, want denied with 40s", ok, wait)
	}

	clock.Advance(41 * time.Second)
	if ok, _ := rl.allow("k"); !ok {
		t.Error("should be allowed once the oldest request leaves the window")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)

	handler := Identity(rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	request := func(actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/templates/x/render", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		if actor != "" {
			req.Header.Set(ActorHeader, actor)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for range 2 {
		if rr := request("u1"); rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200", rr.Code)
		}
	}

	rr := request("u1")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status: got %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}

	// Anonymous callers are keyed by IP, separately from u1.
	if rr := request(""); rr.Code != http.StatusOK {
		t.Errorf("anonymous status: got %d, want 200", rr.Code)
	}
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:555"
	if got := callerKey(req); got != "ip:10.0.0.9" {
		t.Errorf("anonymous key = %q", got)
	}

	req = req.WithContext(WithIdentity(req.Context(), "u1", "acme"))
	if got := callerKey(req); got != "actor:acme/u1" {
		t.Errorf("actor key = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			xff:        "10.0.0.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for multiple",
			xff:        "10.0.0.1, 172.16.0.1, 192.168.1.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip",
			xri:        "10.0.0.2",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.2",
		},
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(t, 10, time.Minute)

	rl.allow("old")
	rl.allow("fresh")
	clock.Advance(90 * time.Second)
	rl.allow("fresh")

	rl.cleanup()

	rl.mu.RLock()
	_, oldExists := rl.clients["old"]
	_, freshExists := rl.clients["fresh"]
	rl.mu.RUnlock()

	if oldExists {
		t.Error("old should have been cleaned up")
	}
	if !freshExists {
		t.Error("fresh should still exist")
	}
}
