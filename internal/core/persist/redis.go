package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocktail-recommender/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "cocktail:persist:"

// RedisStore 以 Redis 保存網域資料
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 持久化策略
func NewRedisStore(cfg config.PersistConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.TTL), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load 讀取網域資料
func (s *RedisStore) Load(ctx context.Context, domain string, v any) (bool, error) {
	data, err := s.client.Get(ctx, s.key(domain)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache: %w", err)
	}

	if err := decode(domain, data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Save 寫入網域資料
func (s *RedisStore) Save(ctx context.Context, domain string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(domain), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 刪除網域資料
func (s *RedisStore) Delete(ctx context.Context, domain string) error {
	if err := s.client.Del(ctx, s.key(domain)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(domain string) string {
	return redisKeyPrefix + domain
}
