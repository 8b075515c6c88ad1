package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "denylist:"

// TokenDenylist implements repository.TokenDenylist using Redis. Entries
// expire on their own once the denylisted token would have expired anyway.
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist creates a new Redis-backed access token denylist.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Add denylists a token for the given time-to-live. Tokens already past
// expiry are skipped since they can no longer authenticate.
func (d *TokenDenylist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, denylistKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set denylist entry: %w", err)
	}

	return nil
}

// Contains reports whether the token has been denylisted.
func (d *TokenDenylist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check denylist entry: %w", err)
	}

	return n > 0, nil
}

// denylistKey hashes the token so raw JWTs never land in Redis.
func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistKeyPrefix + hex.EncodeToString(sum[:])
}
