package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"kindergarten_backend/internal/config"
	"kindergarten_backend/internal/model"
	"kindergarten_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleIndex(t *testing.T, childID uint) model.ProgressIndex {
	t.Helper()
	now := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	rec := newRecord(childID*10, childID, date(2024, time.May, 3), 6)
	rec.Height = 102.5
	return BuildIndexAt([]model.AssessmentRecord{rec}, now)
}

func TestMemoryProgressCache_GetPutInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryProgressCache(0, 0)

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	idx := sampleIndex(t, 1)
	cache.Put(ctx, 1, idx)

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, idx, got)

	cache.Invalidate(ctx, 1)
	_, ok = cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryProgressCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryProgressCache(0, 0)
	for id := uint(1); id <= 5; id++ {
		cache.Put(ctx, id, sampleIndex(t, id))
	}
	require.Equal(t, 5, cache.Len())

	cache.Clear(ctx)

	assert.Equal(t, 0, cache.Len())
}

func TestMemoryProgressCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryProgressCache(2, 0)

	cache.Put(ctx, 1, sampleIndex(t, 1))
	cache.Put(ctx, 2, sampleIndex(t, 2))
	_, _ = cache.Get(ctx, 1)
	cache.Put(ctx, 3, sampleIndex(t, 3))

	_, ok := cache.Get(ctx, 2)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 1)
	assert.True(t, ok)
	_, ok = cache.Get(ctx, 3)
	assert.True(t, ok)
}

func TestMemoryProgressCache_Expires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryProgressCache(0, 50*time.Millisecond)

	cache.Put(ctx, 1, sampleIndex(t, 1))
	time.Sleep(120 * time.Millisecond)

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestNewProgressCache(t *testing.T) {
	cache, err := NewProgressCache(&config.ProgressConfig{CacheBackend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryProgressCache{}, cache)

	_, err = NewProgressCache(&config.ProgressConfig{CacheBackend: "redis"}, nil)
	assert.Error(t, err)

	_, err = NewProgressCache(&config.ProgressConfig{CacheBackend: "memcached"}, nil)
	assert.Error(t, err)
}

// 需要本地 Redis，设置 KINDERGARTEN_TEST_REDIS_ADDR 后运行
func TestRedisProgressCache(t *testing.T) {
	addr := os.Getenv("KINDERGARTEN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KINDERGARTEN_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx).Err())

	cache := NewRedisProgressCache(rdb, time.Minute)
	cache.Clear(ctx)
	defer cache.Clear(ctx)

	idx := sampleIndex(t, 42)
	cache.Put(ctx, 42, idx)

	got, ok := cache.Get(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, idx.Years(), got.Years())
	require.NotNil(t, got.Slot(2024, model.Q2))
	assert.Equal(t, 102.5, got.Slot(2024, model.Q2).Height)
	assert.Equal(t, 6.0, got.Slot(2024, model.Q2).ActiveSpeech)

	cache.Invalidate(ctx, 42)
	_, ok = cache.Get(ctx, 42)
	assert.False(t, ok)
}

// failDelHook 让所有 DEL 命令失败
type failDelHook struct{}

func (failDelHook) BeforeProcess(ctx context.Context, cmd redis.Cmder) (context.Context, error) {
	if cmd.Name() == "del" {
		return ctx, errors.New("del refused")
	}
	return ctx, nil
}

func (failDelHook) AfterProcess(context.Context, redis.Cmder) error { return nil }

func (failDelHook) BeforeProcessPipeline(ctx context.Context, _ []redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (failDelHook) AfterProcessPipeline(context.Context, []redis.Cmder) error { return nil }

func TestRedisProgressCache_ClearLogsDeleteFailure(t *testing.T) {
	addr := os.Getenv("KINDERGARTEN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KINDERGARTEN_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx).Err())

	cache := NewRedisProgressCache(rdb, time.Minute)
	cache.Put(ctx, 43, sampleIndex(t, 43))
	defer NewRedisProgressCache(rdb, 0).Clear(ctx)

	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = prev }()

	failing := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer failing.Close()
	failing.AddHook(failDelHook{})

	NewRedisProgressCache(failing, time.Minute).Clear(ctx)

	entries := logs.FilterMessage("progress cache clear failed").All()
	require.NotEmpty(t, entries)
	_, ok := cache.Get(ctx, 43)
	assert.True(t, ok)
}
