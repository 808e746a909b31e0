package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wismo-agent/server/internal/agent/model"
	errx "github.com/wismo-agent/server/internal/core/error"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// bucketLayout formats a timestamp into a UTC minute bucket like 202608251405.
const bucketLayout = "200601021504"

// RedisRateLimiter is a fixed-window per-minute limiter keyed by caller
// identity. INCR keeps the count atomic across concurrent requests; blocked
// requests still advance the counter.
type RedisRateLimiter struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisRateLimiter(rdb redis.Cmdable) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, now: time.Now}
}

func (r *RedisRateLimiter) limitKey(apiKey, ip, bucket string) string {
	return fmt.Sprintf("rate_limits:%s:%s:%s", apiKey, ip, bucket)
}

func (r *RedisRateLimiter) Allow(ctx context.Context, apiKey, ip string, limitPerMinute int) (*model.RateLimitResult, error) {
	bucket := r.now().UTC().Format(bucketLayout)
	key := r.limitKey(apiKey, ip, bucket)

	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to increment rate limit counter")
		return nil, errx.WrapRedis(err)
	}
	// The bucket only needs to outlive its minute.
	if count == 1 {
		if err := r.rdb.Expire(ctx, key, 2*time.Minute).Err(); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("failed to set TTL on rate limit bucket")
		}
	}

	return &model.RateLimitResult{
		Allowed: count <= int64(limitPerMinute),
		Count:   count,
		Limit:   limitPerMinute,
		Bucket:  bucket,
	}, nil
}

var _ model.RateLimiter = (*RedisRateLimiter)(nil)
