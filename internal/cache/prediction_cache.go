package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saai/forecast-backend/internal/config"
	"github.com/saai/forecast-backend/internal/domain"
)

const predictionKeyPrefix = "predictions"

// PredictionCache is the cache-aside store for computed predictions,
// keyed by (tenant, product, calendar date). A live entry is returned
// verbatim; there is no invalidation when new sales arrive inside the TTL
// window. That staleness is accepted behavior, not a bug.
type PredictionCache interface {
	Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, bool, error)
	Set(ctx context.Context, p domain.Prediction) error
	TTL() time.Duration
}

type redisPredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPredictionCache struct{}

// NewPredictionCache returns a redis-backed cache, or a noop when caching
// is disabled so callers never branch on config.
func NewPredictionCache(cfg config.CacheConfig) (PredictionCache, error) {
	if !cfg.Enabled {
		return &noopPredictionCache{}, nil
	}

	client, ttl, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPredictionCache{client: client, ttl: ttl}, nil
}

func NewNoopPredictionCache() PredictionCache {
	return &noopPredictionCache{}
}

func (c *redisPredictionCache) Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, bool, error) {
	payload, err := c.client.Get(ctx, buildPredictionKey(tenantID, productCode, date)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var p domain.Prediction
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, false, fmt.Errorf("decode prediction cache: %w", err)
	}
	return &p, true, nil
}

func (c *redisPredictionCache) Set(ctx context.Context, p domain.Prediction) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prediction cache: %w", err)
	}

	key := buildPredictionKey(p.TenantID, p.ProductCode, p.ForecastDate)
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPredictionCache) TTL() time.Duration { return c.ttl }

func (n *noopPredictionCache) Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, bool, error) {
	return nil, false, nil
}

func (n *noopPredictionCache) Set(ctx context.Context, p domain.Prediction) error { return nil }

func (n *noopPredictionCache) TTL() time.Duration { return defaultTTL }

func buildPredictionKey(tenantID, productCode string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", predictionKeyPrefix, tenantID, productCode, date.Format("2006-01-02"))
}
