package cache

import (
	"context"

	"routine-hub/backend/pkg/redis"
)

// RedisBackend 使用共享 Redis 作为缓存介质（多实例部署）
type RedisBackend struct {
	client *redis.Client
	owned  bool
}

// NewRedisBackend owned=true 时 Close 会一并关闭连接
func NewRedisBackend(client *redis.Client, owned bool) *RedisBackend {
	return &RedisBackend{client: client, owned: owned}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return b.client.Get(ctx, key)
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, key, value)
}

func (b *RedisBackend) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}
