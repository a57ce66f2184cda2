// Package redis 提供 CacheService 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"educhat_server/pkg/errorx"
)

// RedisCache Redis 缓存实现
// 同时实现了 CacheService（基础同步读写）和 AsyncCacheService（异步任务）
// 两个接口，不同模块按需声明依赖最小的接口（接口隔离）
type RedisCache struct {
	client       *redis.Client
	taskChan     chan func()
	workerNum    int
	taskChanSize int
}

// NewRedisCache 创建 Redis 缓存实例并启动 Worker Pool
func NewRedisCache(client *redis.Client, workerNum, taskChanSize int) *RedisCache {
	rc := &RedisCache{
		client:       client,
		taskChan:     make(chan func(), taskChanSize),
		workerNum:    workerNum,
		taskChanSize: taskChanSize,
	}
	for i := 0; i < workerNum; i++ {
		go rc.startWorker()
	}
	zap.L().Info("Redis Cache Workers started", zap.Int("workers", workerNum), zap.Int("buffer", taskChanSize))
	return rc
}

// startWorker 启动单个 Worker 消费循环
func (r *RedisCache) startWorker() {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Redis Worker panic", zap.Any("recover", rec))
			go r.startWorker() // 重启
		}
	}()

	for task := range r.taskChan {
		if task != nil {
			task()
		}
	}
}

// SubmitTask 提交异步缓存任务
// 通道满时降级为同步执行，保证任务不丢
func (r *RedisCache) SubmitTask(action func()) {
	select {
	case r.taskChan <- action:
	default:
		zap.L().Warn("Redis cache task channel full, executing synchronously")
		action()
	}
}

// ==================== String 操作 ====================

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// SetNX 仅当键不存在时设置
func (r *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis setnx key %s", key)
	}
	return ok, nil
}

// Get 获取键对应的值（键不存在返回空字符串和 nil）
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// ==================== Key 操作 ====================

// Delete 删除键（如果存在）
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis exists key %s", key)
	}
	if exists == 1 {
		if err := r.client.Unlink(ctx, key).Err(); err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
		}
	}
	return nil
}

// ==================== Set 集合操作 ====================

// AddToSet 向集合添加成员
func (r *RedisCache) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SAdd(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis sadd key %s", key)
	}
	return nil
}

// GetSetMembers 获取集合中的所有成员
func (r *RedisCache) GetSetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis smembers key %s", key)
	}
	return members, nil
}

// RemoveFromSet 从集合中移除成员
func (r *RedisCache) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SRem(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis srem key %s", key)
	}
	return nil
}
