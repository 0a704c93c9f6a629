package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRevocationStore keeps one key per revoked token with a TTL
// equal to the token's remaining lifetime, so entries clean themselves
// up and the registry cannot grow unbounded.
type RedisTokenRevocationStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisTokenRevocationStore(client redis.UniversalClient, prefix string) *RedisTokenRevocationStore {
	if prefix == "" {
		prefix = "revoked_token"
	}
	return &RedisTokenRevocationStore{client: client, prefix: prefix}
}

func (s *RedisTokenRevocationStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if s.client == nil {
		return fmt.Errorf("revocation store: redis client not configured")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(token), "1", ttl).Err()
}

func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if s.client == nil {
		return false, fmt.Errorf("revocation store: redis client not configured")
	}
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisTokenRevocationStore) key(token string) string {
	return s.prefix + ":" + hashToken(token)
}
