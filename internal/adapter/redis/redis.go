package redis

import (
	"context"
	"time"

	"patient-record-service/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

type RedisAdapter struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisAdapter(client *redis.Client) ports.CachePort {
	return &RedisAdapter{
		client: client,
		ctx:    context.Background(),
	}
}

func (r *RedisAdapter) Get(key string) ([]byte, error) {
	result, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return []byte(result), nil
}

func (r *RedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(r.ctx, key, value, ttl).Err()
}

func (r *RedisAdapter) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// DeleteByPrefix scans for keys matching prefix* and deletes them in one
// round trip. Redis has no range delete, so enumeration comes first.
func (r *RedisAdapter) DeleteByPrefix(prefix string) error {
	iter := r.client.Scan(r.ctx, 0, prefix+"*", scanBatchSize).Iterator()

	var keys []string
	for iter.Next(r.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return r.client.Del(r.ctx, keys...).Err()
}

var _ ports.CachePort = (*RedisAdapter)(nil)
