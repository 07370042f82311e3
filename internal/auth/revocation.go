package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Revoker remembers logged-out session ids until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NopRevoker is used without Redis; logout then only clears the cookie.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Duration) error { return nil }
func (NopRevoker) IsRevoked(context.Context, string) (bool, error)     { return false, nil }

type RedisRevoker struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb, prefix: "session:revoked:"}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.prefix+jti, "1", ttl).Err()
}

// IsRevoked fails open: a Redis outage is logged and the token accepted.
func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		log.Warn().Err(err).Msg("session revocation check failed")
		return false, nil
	}
	return n > 0, nil
}
