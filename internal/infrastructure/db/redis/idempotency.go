package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL is how long a create key is remembered when no TTL is
// configured.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a (user, Idempotency-Key) pair to the habit the first
// create produced.
// Key format: idempotency:habit:<user_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to
// DefaultIdempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the remembered habit id, or "" when the key is unknown.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID, key string) (string, error) {
	id, err := s.client.Get(ctx, idempotencyKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, nil
}

// Remember records habitID for the key. The first writer wins, so a racing
// duplicate cannot repoint the key.
func (s *IdempotencyStore) Remember(ctx context.Context, userID, key, habitID string) error {
	if err := s.client.SetNX(ctx, idempotencyKey(userID, key), habitID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable. Used by the readiness probe.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}

func idempotencyKey(userID, key string) string {
	return fmt.Sprintf("idempotency:habit:%s:%s", userID, key)
}
