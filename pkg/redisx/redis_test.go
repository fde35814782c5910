package redisx

import (
	"context"
	"os"
	"testing"
)

func TestOpen_InvalidURL(t *testing.T) {
	if _, err := Open(context.Background(), "not-a-valid-url"); err == nil {
		t.Fatal("expected error for invalid URL, got nil")
	}
}

func TestOpen_UnreachableHost(t *testing.T) {
	if _, err := Open(context.Background(), "redis://localhost:19999"); err == nil {
		t.Fatal("expected error when Redis is unreachable, got nil")
	}
}

func TestClose_NilSafe(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil error closing nil client, got %v", err)
	}
}

// Integration tests, skipped unless REDIS_URL is set.
func TestRedisIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	c, err := Open(context.Background(), redisURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close() //nolint:errcheck

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if c.Redis() == nil {
		t.Fatal("expected non-nil underlying client")
	}
}
