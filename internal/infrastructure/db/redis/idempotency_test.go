package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, ttl), mr
}

func TestIdempotencyStore_KeyScopedByOwner(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)

	if s.ttl != defaultIdempotencyTTL {
		t.Fatalf("expected default ttl, got %v", s.ttl)
	}
	if got := s.key("u1", "abc"); got != "idem:task:u1:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if s.key("u1", "abc") == s.key("u2", "abc") {
		t.Fatalf("keys must differ per owner")
	}
	if NewIdempotencyStore(nil, time.Minute).ttl != time.Minute {
		t.Fatalf("explicit ttl ignored")
	}
}

func TestIdempotencyStore_LookupMiss(t *testing.T) {
	s, _ := newTestStore(t, 0)

	id, found, err := s.Lookup(context.Background(), "u1", "abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found || id != "" {
		t.Fatalf("expected miss, got %q found=%v", id, found)
	}
}

func TestIdempotencyStore_RememberThenLookup(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := s.Remember(ctx, "u1", "abc", "task-1"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	id, found, err := s.Lookup(ctx, "u1", "abc")
	if err != nil || !found || id != "task-1" {
		t.Fatalf("Lookup = %q, %v, %v", id, found, err)
	}
	if _, found, _ := s.Lookup(ctx, "u2", "abc"); found {
		t.Fatalf("key must not leak across owners")
	}
	if ttl := mr.TTL("idem:task:u1:abc"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
}

func TestIdempotencyStore_RememberKeepsFirstClaim(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := s.Remember(ctx, "u1", "abc", "task-1"); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := s.Remember(ctx, "u1", "abc", "task-2"); err != nil {
		t.Fatalf("second Remember: %v", err)
	}

	id, _, _ := s.Lookup(ctx, "u1", "abc")
	if id != "task-1" {
		t.Fatalf("expected first claim to win, got %q", id)
	}
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if err := s.Remember(ctx, "u1", "abc", "task-1"); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, found, err := s.Lookup(ctx, "u1", "abc"); err != nil || found {
		t.Fatalf("expected expired key, got found=%v err=%v", found, err)
	}
}

func TestIdempotencyStore_ServerDown(t *testing.T) {
	s, mr := newTestStore(t, 0)
	ctx := context.Background()
	mr.Close()

	if _, _, err := s.Lookup(ctx, "u1", "abc"); err == nil {
		t.Fatalf("expected lookup error")
	}
	if err := s.Remember(ctx, "u1", "abc", "task-1"); err == nil {
		t.Fatalf("expected remember error")
	}
	if err := s.Ping(ctx); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := Connect(context.Background(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	if err := NewIdempotencyStore(client, 0).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mr.Close()
	if _, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected error for unreachable server")
	}
}
