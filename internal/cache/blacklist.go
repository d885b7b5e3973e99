package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// TokenBlacklist records revoked token IDs until their natural expiry.
type TokenBlacklist struct {
	rdb *redis.Client
}

// NewTokenBlacklist returns a blacklist backed by rdb. A nil client makes
// every lookup report "not revoked".
func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Revoke blacklists jti for ttl. Non-positive ttls are a no-op since the
// token has already expired.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b == nil || b.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti has been blacklisted.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b == nil || b.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := b.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
