package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreForTest(t *testing.T) (*miniredis.Miniredis, *RedisTokenRevocationStore) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return m, NewRedisTokenRevocationStore(client, "revoked_test")
}

func TestRedisRevokeAndCheck(t *testing.T) {
	_, store := newRedisStoreForTest(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("unknown token must not be revoked")
	}

	if err := store.Revoke(ctx, "token-a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to be revoked")
	}
}

func TestRedisRevokeIdempotent(t *testing.T) {
	_, store := newRedisStoreForTest(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	for range 3 {
		if err := store.Revoke(ctx, "token-b", expiry); err != nil {
			t.Fatalf("revoke: %v", err)
		}
	}
	revoked, err := store.IsRevoked(ctx, "token-b")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to stay revoked after repeated revocation")
	}
}

func TestRedisEntrySelfExpires(t *testing.T) {
	m, store := newRedisStoreForTest(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "token-c", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "token-c")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token revoked before TTL lapse")
	}

	m.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "token-c")
	if err != nil {
		t.Fatalf("is revoked after fast forward: %v", err)
	}
	if revoked {
		t.Fatal("expected entry to self-expire with the token")
	}
}

func TestRedisRevokePastExpiryNoop(t *testing.T) {
	_, store := newRedisStoreForTest(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "token-d", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke past expiry: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "token-d")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("revoking past natural expiry must be a no-op")
	}
}

func TestRedisStoreNilClientFailsClosed(t *testing.T) {
	store := NewRedisTokenRevocationStore(nil, "")
	ctx := context.Background()

	if err := store.Revoke(ctx, "token-e", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error from unconfigured store on revoke")
	}
	if _, err := store.IsRevoked(ctx, "token-e"); err == nil {
		t.Fatal("expected error from unconfigured store on check")
	}
}
