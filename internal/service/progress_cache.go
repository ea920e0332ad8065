package service

import (
	"context"
	"encoding/json"
	"fmt"
	"kindergarten_backend/internal/config"
	"kindergarten_backend/internal/model"
	"kindergarten_backend/internal/util"
	"kindergarten_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// ProgressCache 每个幼儿一份 ProgressIndex 的缓存。
// 个人、班级、全园视图都从这里读取，淘汰策略由具体实现决定。
type ProgressCache interface {
	Get(ctx context.Context, childID uint) (model.ProgressIndex, bool)
	Put(ctx context.Context, childID uint, idx model.ProgressIndex)
	Invalidate(ctx context.Context, childID uint)
	Clear(ctx context.Context)
}

// NewProgressCache 按 progress.cache_backend 创建缓存，redis 模式下 rdb 不能为空
func NewProgressCache(cfg *config.ProgressConfig, rdb *redis.Client) (ProgressCache, error) {
	switch cfg.CacheBackend {
	case "", util.CacheBackendMemory:
		return NewMemoryProgressCache(cfg.CacheMaxEntries, cfg.CacheTTL()), nil
	case util.CacheBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("progress cache backend is redis but no redis client was configured")
		}
		return NewRedisProgressCache(rdb, cfg.CacheTTL()), nil
	}
	return nil, fmt.Errorf("unknown progress cache backend %q", cfg.CacheBackend)
}

// MemoryProgressCache 进程内缓存，maxEntries 为 0 时不限条数，ttl 为 0 时不过期
type MemoryProgressCache struct {
	lru *expirable.LRU[uint, model.ProgressIndex]
}

func NewMemoryProgressCache(maxEntries int, ttl time.Duration) *MemoryProgressCache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &MemoryProgressCache{
		lru: expirable.NewLRU[uint, model.ProgressIndex](maxEntries, nil, ttl),
	}
}

func (c *MemoryProgressCache) Get(_ context.Context, childID uint) (model.ProgressIndex, bool) {
	return c.lru.Get(childID)
}

func (c *MemoryProgressCache) Put(_ context.Context, childID uint, idx model.ProgressIndex) {
	c.lru.Add(childID, idx)
}

func (c *MemoryProgressCache) Invalidate(_ context.Context, childID uint) {
	c.lru.Remove(childID)
}

func (c *MemoryProgressCache) Clear(_ context.Context) {
	c.lru.Purge()
}

func (c *MemoryProgressCache) Len() int {
	return c.lru.Len()
}

const progressIndexKeyPrefix = "progress:index:"

// RedisProgressCache 多实例共享的缓存，索引以 JSON 存储。
// Redis 出错时按未命中处理，只记录日志。
type RedisProgressCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisProgressCache(rdb *redis.Client, ttl time.Duration) *RedisProgressCache {
	return &RedisProgressCache{Redis: rdb, TTL: ttl}
}

func progressIndexKey(childID uint) string {
	return fmt.Sprintf("%s%d", progressIndexKeyPrefix, childID)
}

func (c *RedisProgressCache) Get(ctx context.Context, childID uint) (model.ProgressIndex, bool) {
	val, err := c.Redis.Get(ctx, progressIndexKey(childID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("progress cache get failed", zap.Uint("childId", childID), zap.Error(err))
		return nil, false
	}

	var idx model.ProgressIndex
	if err := json.Unmarshal(val, &idx); err != nil {
		logger.Log.Warn("progress cache entry is corrupt", zap.Uint("childId", childID), zap.Error(err))
		return nil, false
	}
	return idx, true
}

func (c *RedisProgressCache) Put(ctx context.Context, childID uint, idx model.ProgressIndex) {
	data, err := json.Marshal(idx)
	if err != nil {
		logger.Log.Error("marshal progress index failed", zap.Uint("childId", childID), zap.Error(err))
		return
	}
	// TTL 为 0 时 go-redis 不设置过期
	if err := c.Redis.Set(ctx, progressIndexKey(childID), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("progress cache put failed", zap.Uint("childId", childID), zap.Error(err))
	}
}

func (c *RedisProgressCache) Invalidate(ctx context.Context, childID uint) {
	if err := c.Redis.Del(ctx, progressIndexKey(childID)).Err(); err != nil {
		logger.Log.Warn("progress cache invalidate failed", zap.Uint("childId", childID), zap.Error(err))
	}
}

func (c *RedisProgressCache) Clear(ctx context.Context) {
	var keys []string
	iter := c.Redis.Scan(ctx, 0, progressIndexKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 200 {
			c.del(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("progress cache scan failed", zap.Error(err))
	}
	if len(keys) > 0 {
		c.del(ctx, keys)
	}
}

func (c *RedisProgressCache) del(ctx context.Context, keys []string) {
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("progress cache clear failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}
