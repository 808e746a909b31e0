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

type RedisOrderRepository struct {
	rdb redis.Cmdable
}

func NewRedisOrderRepository(rdb redis.Cmdable) *RedisOrderRepository {
	return &RedisOrderRepository{rdb: rdb}
}

func (r *RedisOrderRepository) orderKey(orderID string) string {
	return fmt.Sprintf("orders:%s", orderID)
}

func (r *RedisOrderRepository) Get(ctx context.Context, orderID string) (*model.Order, error) {
	key := r.orderKey(orderID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to load order from redis")
		}
		return nil, errx.WrapRedis(err)
	}

	var o model.Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal order")
		return nil, fmt.Errorf("unmarshal order %s: %w", orderID, err)
	}
	return &o, nil
}

func (r *RedisOrderRepository) Put(ctx context.Context, order *model.Order) error {
	b, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	key := r.orderKey(order.OrderID)
	if err := r.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store order in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.OrderRepository = (*RedisOrderRepository)(nil)
