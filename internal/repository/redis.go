package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mta/internal/config"

	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "mta:report:"

// RedisReportCache keeps report rollups as JSON strings under one key prefix.
type RedisReportCache struct {
	client *redis.Client
	prefix string
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{
		client: client,
		prefix: reportKeyPrefix,
	}
}

func (r *RedisReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report from redis: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return true, nil
}

func (r *RedisReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report in redis: %w", err)
	}
	return nil
}

// Invalidate drops every cached report.
func (r *RedisReportCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan report keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete report keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
