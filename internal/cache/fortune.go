package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const fortunesKey = "fortunes:all"

// FortuneCache — кэш полного списка предсказаний. Список маленький и
// почти не меняется, случайный выбор делается уже в памяти сервиса.
type FortuneCache interface {
	GetAll(ctx context.Context) ([]models.Fortune, error)
	SetAll(ctx context.Context, fortunes []models.Fortune) error
}

type RedisFortuneCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFortuneCache(client *redis.Client, ttl time.Duration) *RedisFortuneCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisFortuneCache{client: client, ttl: ttl}
}

func (c *RedisFortuneCache) GetAll(ctx context.Context) ([]models.Fortune, error) {
	data, err := c.client.Get(ctx, fortunesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var fortunes []models.Fortune
	if err := json.Unmarshal(data, &fortunes); err != nil {
		return nil, fmt.Errorf("unmarshal fortunes failed: %w", err)
	}
	return fortunes, nil
}

func (c *RedisFortuneCache) SetAll(ctx context.Context, fortunes []models.Fortune) error {
	data, err := json.Marshal(fortunes)
	if err != nil {
		return fmt.Errorf("marshal fortunes failed: %w", err)
	}
	if err := c.client.Set(ctx, fortunesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
