package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/chatline/authd/internal/common"
)

func setupRedisStore(t *testing.T, now func() time.Time) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, now), mr
}

func TestRevokeAndIsRevoked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, mr := setupRedisStore(t, func() time.Time { return now })
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if revoked {
		t.Fatalf("fresh token reported revoked")
	}

	if err := store.Revoke(ctx, "tok-1", now.Add(10*time.Minute)); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if !revoked {
		t.Fatalf("revoked token not reported revoked")
	}

	if got := mr.TTL("blacklist:tok-1"); got != 10*time.Minute {
		t.Fatalf("entry TTL: got %v want %v", got, 10*time.Minute)
	}
}

func TestRevoke_ExpiredTokenNotStored(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, mr := setupRedisStore(t, func() time.Time { return now })

	if err := store.Revoke(context.Background(), "dead-tok", now.Add(-time.Second)); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if mr.Exists("blacklist:dead-tok") {
		t.Fatalf("entry created for an already-expired token")
	}
}

func TestTryRevoke_SingleWinner(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _ := setupRedisStore(t, func() time.Time { return now })
	ctx := context.Background()

	ok, err := store.TryRevoke(ctx, "rt-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("TryRevoke error: %v", err)
	}
	if !ok {
		t.Fatalf("first TryRevoke did not win")
	}

	ok, err = store.TryRevoke(ctx, "rt-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("TryRevoke error: %v", err)
	}
	if ok {
		t.Fatalf("second TryRevoke won too")
	}
}

func TestTryRevoke_ExpiredTokenIsNoop(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, mr := setupRedisStore(t, func() time.Time { return now })

	ok, err := store.TryRevoke(context.Background(), "dead-rt", now)
	if err != nil {
		t.Fatalf("TryRevoke error: %v", err)
	}
	if !ok {
		t.Fatalf("TryRevoke on a naturally expired token should report success")
	}
	if mr.Exists("blacklist:dead-rt") {
		t.Fatalf("entry created for an already-expired token")
	}
}

func TestEntries_SelfExpire(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, mr := setupRedisStore(t, func() time.Time { return now })
	ctx := context.Background()

	if err := store.Revoke(ctx, "tok-2", now.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "tok-2")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if revoked {
		t.Fatalf("entry survived past its TTL")
	}
}

func TestStoreUnavailable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, mr := setupRedisStore(t, func() time.Time { return now })
	mr.Close()

	if _, err := store.IsRevoked(context.Background(), "tok"); !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Revoke(context.Background(), "tok", now.Add(time.Hour)); !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.TryRevoke(context.Background(), "tok", now.Add(time.Hour)); !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
