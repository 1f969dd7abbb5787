package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList is the token denylist backed by Redis. Logout writes the
// token's jti here; validation checks it. Entries expire with the token
// they revoke, so the list never outgrows the live token set.
// Key format: revoked:<jti>
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList creates a RevocationList wrapping the given Redis client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke denylists jti for ttlSeconds.
func (l *RevocationList) Revoke(ctx context.Context, jti string, ttlSeconds int64) error {
	if ttlSeconds <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.key(jti), "1", time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is on the denylist.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (l *RevocationList) key(jti string) string {
	return "revoked:" + jti
}
