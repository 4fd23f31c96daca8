package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"intersect-backend/internal/models"
)

type Client interface {
	GetDevReport(orgID, date string) (*models.DevReport, error)
	SetDevReport(report *models.DevReport, ttl time.Duration) error
	IncrWithTTL(key string, ttl time.Duration) (int64, error)
	Close() error
}

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisClient() (*RedisCache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			opts.DB = db
		}
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func devReportKey(orgID, date string) string {
	return fmt.Sprintf("intersect:dev_report:%s:%s", orgID, date)
}

// GetDevReport returns redis.Nil when no report is cached for the day.
func (c *RedisCache) GetDevReport(orgID, date string) (*models.DevReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.rdb.Get(ctx, devReportKey(orgID, date)).Bytes()
	if err != nil {
		return nil, err
	}

	var report models.DevReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *RedisCache) SetDevReport(report *models.DevReport, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, devReportKey(report.OrganizationID, report.ReportDate), data, ttl).Err()
}

// IncrWithTTL increments a counter and arms its expiry on first increment.
// Rate-limit middleware keys on it.
func (c *RedisCache) IncrWithTTL(key string, ttl time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = c.rdb.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
