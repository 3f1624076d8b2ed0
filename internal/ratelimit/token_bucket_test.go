package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTokenBucketExhaustsCapacity(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bucket := NewTokenBucket(client, 2, 1, time.Minute)

	allowed, _, err := bucket.Allow(ctx, "client:10.0.0.1")
	if err != nil || !allowed {
		t.Fatalf("first request: allowed=%v err=%v", allowed, err)
	}
	allowed, _, _ = bucket.Allow(ctx, "client:10.0.0.1")
	if !allowed {
		t.Fatal("second request should be allowed")
	}
	allowed, _, _ = bucket.Allow(ctx, "client:10.0.0.1")
	if allowed {
		t.Fatal("third request should exhaust the bucket")
	}

	// A different key has its own budget.
	allowed, _, _ = bucket.Allow(ctx, "client:10.0.0.2")
	if !allowed {
		t.Fatal("separate key should not share the exhausted budget")
	}

	// Refill cannot be tested with miniredis.FastForward: the script takes
	// its clock from Go's time.Now, not Redis.
}
