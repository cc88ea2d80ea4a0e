package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client and the stats snapshot cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

func statsKey(userID string) string { return "classtrack:stats:" + userID }

// CacheStats stores a user's aggregated stats snapshot.
func (r *Redis) CacheStats(ctx context.Context, userID string, payload []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, statsKey(userID), payload, ttl).Err()
}

// CachedStats returns the snapshot when present.
func (r *Redis) CachedStats(ctx context.Context, userID string) ([]byte, bool) {
	val, err := r.Client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// InvalidateStats drops a stale snapshot after a mutation.
func (r *Redis) InvalidateStats(ctx context.Context, userID string) error {
	return r.Client.Del(ctx, statsKey(userID)).Err()
}
