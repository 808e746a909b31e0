package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wismo-agent/server/internal/agent/model"
	errx "github.com/wismo-agent/server/internal/core/error"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// RedisActionLogRepository appends audit events to a per-session list.
// Entries are never trimmed or expired; the list is the audit record.
type RedisActionLogRepository struct {
	rdb redis.Cmdable
}

func NewRedisActionLogRepository(rdb redis.Cmdable) *RedisActionLogRepository {
	return &RedisActionLogRepository{rdb: rdb}
}

func (r *RedisActionLogRepository) logKey(sessionID string) string {
	return fmt.Sprintf("action_logs:%s", sessionID)
}

func (r *RedisActionLogRepository) Append(ctx context.Context, entry model.ActionLogEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal action log entry: %w", err)
	}

	key := r.logKey(entry.SessionID)
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push action log entry to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ActionLogRepository = (*RedisActionLogRepository)(nil)
