package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// redisAddr returns the address of a Redis instance for integration tests,
// skipping the test when none is configured.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("RAILCDL_TEST_REDIS")
	if addr == "" {
		t.Skip("RAILCDL_TEST_REDIS not set")
	}
	return addr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: redisAddr(t), Prefix: "railcdl:test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get missing: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "key", []byte("report"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "report" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 1 {
		t.Errorf("Clear = %d, %v; want 1, nil", n, err)
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Port 1 is reserved and refuses connections.
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache error = %v, want ErrUnavailable", err)
	}
}
