package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/chatline/authd/internal/common"
)

// keyPrefix namespaces revocation entries in a shared Redis instance.
const keyPrefix = "blacklist:"

// revokedSentinel is the stored value; only key existence matters.
const revokedSentinel = "1"

// RedisStore implements Store on top of Redis, relying on native key TTLs
// for entry cleanup.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore wraps an existing client. now may be nil, in which case
// time.Now is used.
func NewRedisStore(client *redis.Client, now func() time.Time) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, now: now}
}

// NewRedisClient builds a client from a redis:// URL and verifies
// connectivity with a ping before returning it.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", common.ErrStoreUnavailable, err)
	}

	return client, nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis exists: %v", common.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+token, revokedSentinel, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) TryRevoke(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// Nothing to record; the token is already naturally expired.
		return true, nil
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+token, revokedSentinel, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis setnx: %v", common.ErrStoreUnavailable, err)
	}
	return ok, nil
}
