package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wismo-agent/server/internal/agent/model"
	errx "github.com/wismo-agent/server/internal/core/error"
	logx "github.com/wismo-agent/server/pkg/logger"
)

type RedisCaseRepository struct {
	rdb redis.Cmdable
}

func NewRedisCaseRepository(rdb redis.Cmdable) *RedisCaseRepository {
	return &RedisCaseRepository{rdb: rdb}
}

func (r *RedisCaseRepository) caseKey(caseID string) string {
	return fmt.Sprintf("cases:%s", caseID)
}

// emailIndexKey is the equality index backing CountRecentByEmail.
func (r *RedisCaseRepository) emailIndexKey(email string) string {
	return fmt.Sprintf("cases:by_email:%s", strings.ToLower(email))
}

func (r *RedisCaseRepository) Create(ctx context.Context, c *model.Case) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal case: %w", err)
	}

	key := r.caseKey(c.CaseID)
	if err := r.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store case in redis")
		return errx.WrapRedis(err)
	}

	if c.Email != "" {
		idx := r.emailIndexKey(c.Email)
		if err := r.rdb.SAdd(ctx, idx, c.CaseID).Err(); err != nil {
			logx.Error().Err(err).Str("key", idx).Msg("failed to index case by email")
			return errx.WrapRedis(err)
		}
	}
	return nil
}

func (r *RedisCaseRepository) Get(ctx context.Context, caseID string) (*model.Case, error) {
	key := r.caseKey(caseID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to load case from redis")
		}
		return nil, errx.WrapRedis(err)
	}

	var c model.Case
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal case")
		return nil, fmt.Errorf("unmarshal case %s: %w", caseID, err)
	}
	return &c, nil
}

func (r *RedisCaseRepository) CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	idx := r.emailIndexKey(email)

	ids, err := r.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", idx).Msg("failed to read case email index from redis")
		return 0, errx.WrapRedis(err)
	}

	count := 0
	for _, id := range ids {
		c, err := r.Get(ctx, id)
		if err != nil {
			// An indexed id whose document expired is not worth failing over.
			if errx.IsNotFound(err) {
				continue
			}
			return 0, err
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}

var _ model.CaseRepository = (*RedisCaseRepository)(nil)
