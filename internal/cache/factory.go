package cache

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"routine-hub/backend/config"
	"routine-hub/backend/pkg/redis"
)

// ErrRedisUnavailable cache.driver=redis 但未能建立 Redis 连接
var ErrRedisUnavailable = errors.New("缓存驱动为 redis，但 Redis 不可用")

// Open 按配置选择缓存介质；rdb 可为 nil（仅 redis 驱动需要）
func Open(cfg *config.CacheConfig, rdb *redis.Client, logger *zap.Logger) (*Store, error) {
	var backend Backend
	switch cfg.Driver {
	case "memory":
		backend = NewMemoryBackend()
	case "redis":
		if rdb == nil {
			return nil, ErrRedisUnavailable
		}
		backend = NewRedisBackend(rdb, false)
	case "sqlite", "":
		b, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("未知的缓存驱动: %s", cfg.Driver)
	}

	logger.Info("本地缓存已就绪", zap.String("driver", cfg.Driver), zap.String("path", cfg.Path))
	return NewStore(backend, cfg.KeyPrefix, logger), nil
}
