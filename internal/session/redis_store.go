package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// RedisRevocationStore keeps revoked session ids as expiring Redis keys.
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore returns nil when client is nil so callers can pass
// the result straight to NewManager.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	if client == nil {
		return nil
	}
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKeyPrefix+sessionID, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
