// Package cache 本地持久化缓存：三个固定键，进程重启后仍可读取。
//
// Load 永不失败（缺失即首次运行），Save 尽力而为，后端错误只记录日志。
// 无 TTL、无淘汰，同一键后写覆盖先写。
package cache

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// 缓存键
const (
	KeyRoutine         = "routine"
	KeyMetadata        = "metadata"
	KeyLastSeenVersion = "lastSeenVersion"
)

// Backend 缓存存储介质
type Backend interface {
	// Get 键不存在时 ok=false 且 err=nil
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Store 对 Backend 的容错封装
type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger
}

// NewStore 创建缓存；prefix 会拼接在每个键前
func NewStore(backend Backend, prefix string, logger *zap.Logger) *Store {
	return &Store{backend: backend, prefix: prefix, logger: logger}
}

// Load 读取缓存；后端出错按缺失处理
func (s *Store) Load(ctx context.Context, key string) (string, bool) {
	val, ok, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		s.logger.Warn("读取本地缓存失败，按缺失处理", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, ok
}

// Save 写入缓存；失败只记录日志
func (s *Store) Save(ctx context.Context, key, payload string) {
	if err := s.backend.Set(ctx, s.prefix+key, payload); err != nil {
		s.logger.Warn("写入本地缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// LoadJSON 读取并反序列化；缺失或内容损坏都返回 false
func (s *Store) LoadJSON(ctx context.Context, key string, v any) bool {
	raw, ok := s.Load(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("本地缓存内容损坏，已忽略", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SaveJSON 序列化后写入
func (s *Store) SaveJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("序列化缓存内容失败", zap.String("key", key), zap.Error(err))
		return
	}
	s.Save(ctx, key, string(data))
}

// Close 关闭底层介质
func (s *Store) Close() error {
	return s.backend.Close()
}
