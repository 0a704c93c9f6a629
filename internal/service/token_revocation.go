package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// TokenRevocationStore is the durable registry of revoked tokens.
// Revoke is idempotent; revoking an already-revoked token is a no-op.
// IsRevoked reports true only while the entry's expiry is in the
// future — past that the token is indistinguishable from one that was
// never revoked, whether or not physical deletion happened yet.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type InMemoryTokenRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewInMemoryTokenRevocationStore() *InMemoryTokenRevocationStore {
	return &InMemoryTokenRevocationStore{entries: make(map[string]time.Time)}
}

func (s *InMemoryTokenRevocationStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	s.mu.Lock()
	s.entries[hashToken(token)] = expiresAt
	s.mu.Unlock()
	return nil
}

func (s *InMemoryTokenRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	key := hashToken(token)
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(now) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
