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

type RedisShipmentRepository struct {
	rdb redis.Cmdable
}

func NewRedisShipmentRepository(rdb redis.Cmdable) *RedisShipmentRepository {
	return &RedisShipmentRepository{rdb: rdb}
}

func (r *RedisShipmentRepository) shipmentKey(trackingID string) string {
	return fmt.Sprintf("shipments:%s", trackingID)
}

func (r *RedisShipmentRepository) Get(ctx context.Context, trackingID string) (*model.Shipment, error) {
	key := r.shipmentKey(trackingID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to load shipment from redis")
		}
		return nil, errx.WrapRedis(err)
	}

	var s model.Shipment
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal shipment")
		return nil, fmt.Errorf("unmarshal shipment %s: %w", trackingID, err)
	}
	return &s, nil
}

func (r *RedisShipmentRepository) Put(ctx context.Context, shipment *model.Shipment) error {
	b, err := json.Marshal(shipment)
	if err != nil {
		return fmt.Errorf("marshal shipment: %w", err)
	}

	key := r.shipmentKey(shipment.TrackingID)
	if err := r.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store shipment in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ShipmentRepository = (*RedisShipmentRepository)(nil)
