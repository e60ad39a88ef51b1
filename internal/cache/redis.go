package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartmart_service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const metricsKey = "dashboard:metrics"

// RedisCache keeps the last computed dashboard under a single key.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string, logger *logrus.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Infof("Redis connected (%s)", opts.Addr)
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: logger}
}

func (c *RedisCache) GetMetrics(ctx context.Context) (*domain.DashboardMetrics, bool, error) {
	data, err := c.client.Get(ctx, metricsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", metricsKey, err)
	}

	metrics, err := decodeMetrics(data)
	if err != nil {
		return nil, false, err
	}
	return metrics, true, nil
}

func (c *RedisCache) SetMetrics(ctx context.Context, metrics *domain.DashboardMetrics) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if err := c.client.Set(ctx, metricsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", metricsKey, err)
	}
	c.log.Debugf("Cached dashboard metrics for %s", c.ttl)
	return nil
}

func (c *RedisCache) InvalidateMetrics(ctx context.Context) error {
	if err := c.client.Del(ctx, metricsKey).Err(); err != nil {
		return fmt.Errorf("del %s: %w", metricsKey, err)
	}
	return nil
}

func decodeMetrics(data []byte) (*domain.DashboardMetrics, error) {
	metrics := &domain.DashboardMetrics{}
	if err := json.Unmarshal(data, metrics); err != nil {
		return nil, fmt.Errorf("decode cached metrics: %w", err)
	}
	if metrics.SalesByMonth == nil {
		metrics.SalesByMonth = []domain.MonthlySales{}
	}
	if metrics.CategoryBreakdown == nil {
		metrics.CategoryBreakdown = []domain.MonthBreakdown{}
	}
	return metrics, nil
}
