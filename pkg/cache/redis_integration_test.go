//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("MINDMAP_REDIS_ADDR")
	if addr == "" {
		t.Skip("MINDMAP_REDIS_ADDR not set")
	}
	return addr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: redisAddr(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	prefix := "mindmap-test:" + time.Now().Format("150405.000000") + ":"
	t.Cleanup(func() { _, _ = c.Clear(context.Background(), prefix) })

	if err := c.Set(ctx, prefix+"a", []byte("1"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, prefix+"a")
	if err != nil || !hit || string(data) != "1" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if _, hit, _ := c.Get(ctx, prefix+"missing"); hit {
		t.Error("missing key should miss")
	}

	_ = c.Set(ctx, prefix+"b", []byte("2"), 0)
	n, err := c.Clear(ctx, prefix)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Clear removed %d keys, want 2", n)
	}
	if _, hit, _ := c.Get(ctx, prefix+"b"); hit {
		t.Error("key survived Clear")
	}
}

func TestRedisCacheBadAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected connection error")
	}
}
