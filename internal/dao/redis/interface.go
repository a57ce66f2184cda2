// Package redis 定义缓存服务接口
// 遵循依赖倒置原则，Service 层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
// 抽象缓存操作，支持 Redis、本地缓存等多种实现
type CacheService interface {
	// ==================== String 操作 ====================

	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetNX 仅当键不存在时设置，返回是否设置成功（用于消息去重窗口）
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)

	// ==================== Key 操作 ====================

	// Delete 删除键（如果存在）
	Delete(ctx context.Context, key string) error

	// ==================== Set 集合操作 ====================

	// AddToSet 向集合添加成员（好友ID集合、在线用户镜像）
	AddToSet(ctx context.Context, key string, members ...interface{}) error
	// GetSetMembers 获取集合中的所有成员
	GetSetMembers(ctx context.Context, key string) ([]string, error)
	// RemoveFromSet 从集合中移除成员
	RemoveFromSet(ctx context.Context, key string, members ...interface{}) error
}

// AsyncCacheService 异步缓存服务接口
// 提供异步任务提交能力，用于非阻塞缓存更新（消息热路径绝不同步等 Redis）
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步缓存任务
	SubmitTask(action func())
}
