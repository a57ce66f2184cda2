// Package chat 实现聊天系统的核心服务层
// dedup.go
// 核心职责：消息去重窗口
// 客户端没收到确认会重发，(发送者, 目标, 幂等键) 在窗口内重复出现时
// 不再入库，直接用首次入库的消息ID重新确认
package chat

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"educhat_server/internal/dao/redis"
	"educhat_server/pkg/constants"
)

// dedupKey 构造去重键
func dedupKey(senderId, targetId, clientNonce string) string {
	return fmt.Sprintf("msg_dedup:%s:%s:%s", senderId, targetId, clientNonce)
}

// Deduper 去重窗口接口
// Seen 查询幂等键是否已有入库记录；Record 在入库成功后登记
type Deduper interface {
	// Seen 返回首次入库的消息ID，未命中时 ok 为 false
	Seen(ctx context.Context, senderId, targetId, clientNonce string) (messageId int64, ok bool)
	// Record 登记幂等键与消息ID的映射，窗口过后自动失效
	Record(ctx context.Context, senderId, targetId, clientNonce string, messageId int64)
}

// ==================== Redis 实现 ====================

// redisDeduper 基于 Redis 的去重窗口，多实例部署共享
type redisDeduper struct {
	cache  redis.CacheService
	window time.Duration
}

// NewRedisDeduper 创建 Redis 去重窗口
func NewRedisDeduper(cache redis.CacheService, window time.Duration) Deduper {
	if window <= 0 {
		window = constants.DEDUP_WINDOW
	}
	return &redisDeduper{cache: cache, window: window}
}

func (d *redisDeduper) Seen(ctx context.Context, senderId, targetId, clientNonce string) (int64, bool) {
	value, err := d.cache.Get(ctx, dedupKey(senderId, targetId, clientNonce))
	if err != nil || value == "" {
		// 缓存故障按未命中处理，代价是极端情况下的一次重复入库
		return 0, false
	}
	messageId, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return messageId, true
}

func (d *redisDeduper) Record(ctx context.Context, senderId, targetId, clientNonce string, messageId int64) {
	key := dedupKey(senderId, targetId, clientNonce)
	// SETNX 保首写胜出：两个实例同时入库同一幂等键时，后到者不会覆盖先登记的消息ID
	_, _ = d.cache.SetNX(ctx, key, strconv.FormatInt(messageId, 10), d.window)
}

// ==================== 内存实现 ====================

// memoryDeduper 进程内去重窗口，单机模式与单元测试使用
type memoryDeduper struct {
	mu      sync.Mutex
	entries map[string]memoryDedupEntry
	window  time.Duration
}

type memoryDedupEntry struct {
	messageId int64
	expiresAt time.Time
}

// NewMemoryDeduper 创建进程内去重窗口
func NewMemoryDeduper(window time.Duration) Deduper {
	return &memoryDeduper{
		entries: make(map[string]memoryDedupEntry),
		window:  window,
	}
}

func (d *memoryDeduper) Seen(_ context.Context, senderId, targetId, clientNonce string) (int64, bool) {
	key := dedupKey(senderId, targetId, clientNonce)
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.entries[key]
	if !ok {
		return 0, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(d.entries, key)
		return 0, false
	}
	return entry.messageId, true
}

func (d *memoryDeduper) Record(_ context.Context, senderId, targetId, clientNonce string, messageId int64) {
	key := dedupKey(senderId, targetId, clientNonce)
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	// 顺手清掉过期条目，避免无上限膨胀
	for k, entry := range d.entries {
		if now.After(entry.expiresAt) {
			delete(d.entries, k)
		}
	}
	d.entries[key] = memoryDedupEntry{messageId: messageId, expiresAt: now.Add(d.window)}
}
