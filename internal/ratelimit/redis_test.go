package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	limiter, err := New("redis://"+s.Addr(), limit, window)
	if err != nil {
		t.Fatalf("failed to create limiter: %v", err)
	}
	return limiter, s
}

func TestNewLimiter(t *testing.T) {
	limiter, s := setupTestLimiter(t, 5, time.Minute)
	defer limiter.Close()
	defer s.Close()

	if err := limiter.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, s := setupTestLimiter(t, 3, time.Minute)
	defer limiter.Close()
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("request over the limit should be denied")
	}
}

func TestAllowResetsAfterWindow(t *testing.T) {
	limiter, s := setupTestLimiter(t, 1, time.Second)
	defer limiter.Close()
	defer s.Close()

	ctx := context.Background()
	if !limiter.Allow(ctx, "10.0.0.2") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow(ctx, "10.0.0.2") {
		t.Fatal("second request should be denied")
	}

	s.FastForward(2 * time.Second)

	if !limiter.Allow(ctx, "10.0.0.2") {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestAllowIsolatesKeys(t *testing.T) {
	limiter, s := setupTestLimiter(t, 1, time.Minute)
	defer limiter.Close()
	defer s.Close()

	ctx := context.Background()
	if !limiter.Allow(ctx, "10.0.0.3") {
		t.Fatal("first key should be allowed")
	}
	if !limiter.Allow(ctx, "10.0.0.4") {
		t.Fatal("second key should be allowed")
	}
	if limiter.Allow(ctx, "10.0.0.3") {
		t.Fatal("first key should be throttled")
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var limiter *Limiter
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		if !limiter.Allow(ctx, "anyone") {
			t.Fatal("nil limiter must allow all requests")
		}
	}
	if err := limiter.Close(); err != nil {
		t.Fatalf("nil limiter Close failed: %v", err)
	}
}
