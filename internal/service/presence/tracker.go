// Package presence 维护用户在线状态
// 在线是派生状态：活跃连接数 > 0 即在线，绝不落库；
// 同一用户允许多端同时连接（网页 + 手机），引用计数归零才算离线
package presence

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dao/redis"
	"educhat_server/pkg/constants"
)

// shardCount 分片数量，降低高并发连接建立/断开时的锁竞争
const shardCount = 16

// onlineSetKey 在线用户集合的 Redis 镜像键
// 镜像只服务于运维观测，在线判定始终走内存
const onlineSetKey = "presence:online_users"

// Announcer 上下线事件回调
// online 为 true 表示用户从离线变为在线，false 反之
type Announcer func(userUuid string, online bool)

// shard 单个分片，持有自己的锁
type shard struct {
	mu sync.Mutex
	// conns 用户 -> 连接ID集合
	conns map[string]map[string]struct{}
	// timers 防抖定时器，同一用户最多一个在途定时器
	timers map[string]*time.Timer
	// announced 已对外公布的状态，定时器触发时与实际状态比对
	announced map[string]bool
}

// Tracker 在线状态跟踪器
// AddConn/RemoveConn 由连接网关在连接建立/断开时调用；
// 上下线公布经过防抖窗口，窗口内闪断的用户不会向外发事件
type Tracker struct {
	shards   [shardCount]*shard
	debounce time.Duration
	announce Announcer
	cache    redis.AsyncCacheService
}

// NewTracker 创建在线状态跟踪器
// cache 可以为 nil（单元测试），此时跳过 Redis 镜像
func NewTracker(debounce time.Duration, cache redis.AsyncCacheService) *Tracker {
	t := &Tracker{
		debounce: debounce,
		cache:    cache,
	}
	for i := range t.shards {
		t.shards[i] = &shard{
			conns:     make(map[string]map[string]struct{}),
			timers:    make(map[string]*time.Timer),
			announced: make(map[string]bool),
		}
	}
	return t
}

// SetAnnouncer 注册上下线事件回调（由聊天服务在启动时注入）
func (t *Tracker) SetAnnouncer(fn Announcer) {
	t.announce = fn
}

// shardOf 根据用户ID定位分片
func (t *Tracker) shardOf(userUuid string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userUuid))
	return t.shards[h.Sum32()%shardCount]
}

// AddConn 记录一条新连接
// 同一 (用户, 连接) 重复添加是幂等的
func (t *Tracker) AddConn(userUuid, connId string) {
	s := t.shardOf(userUuid)
	s.mu.Lock()
	set, ok := s.conns[userUuid]
	if !ok {
		set = make(map[string]struct{})
		s.conns[userUuid] = set
	}
	set[connId] = struct{}{}
	s.mu.Unlock()

	zap.L().Debug("presence add conn",
		zap.String("user", userUuid), zap.String("conn", connId))
	t.scheduleAnnounce(userUuid)
}

// RemoveConn 移除一条连接
// 心跳超时和主动断开走同一条路径
func (t *Tracker) RemoveConn(userUuid, connId string) {
	s := t.shardOf(userUuid)
	s.mu.Lock()
	if set, ok := s.conns[userUuid]; ok {
		delete(set, connId)
		if len(set) == 0 {
			delete(s.conns, userUuid)
		}
	}
	s.mu.Unlock()

	zap.L().Debug("presence remove conn",
		zap.String("user", userUuid), zap.String("conn", connId))
	t.scheduleAnnounce(userUuid)
}

// scheduleAnnounce 安排一次防抖后的状态公布
// 防抖窗口内的反复变化会重置定时器，只有稳定后的最终状态才会公布
func (t *Tracker) scheduleAnnounce(userUuid string) {
	s := t.shardOf(userUuid)
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[userUuid]; ok {
		timer.Stop()
	}
	if t.debounce <= 0 {
		// 零防抖（测试场景）直接公布
		delete(s.timers, userUuid)
		t.fireLocked(s, userUuid)
		return
	}
	s.timers[userUuid] = time.AfterFunc(t.debounce, func() {
		s.mu.Lock()
		delete(s.timers, userUuid)
		t.fireLocked(s, userUuid)
		s.mu.Unlock()
	})
}

// fireLocked 比对实际状态与已公布状态，不一致才对外公布
// 调用方必须持有分片锁
func (t *Tracker) fireLocked(s *shard, userUuid string) {
	online := len(s.conns[userUuid]) > 0
	prev, ok := s.announced[userUuid]
	if ok && prev == online {
		return
	}
	if !ok && !online {
		// 从未公布过且当前离线：闪断在窗口内结束，无需公布
		return
	}
	if online {
		s.announced[userUuid] = true
	} else {
		delete(s.announced, userUuid)
	}

	t.mirror(userUuid, online)
	if t.announce != nil {
		// 回调里会做网络推送，放到锁外执行
		go t.announce(userUuid, online)
	}
}

// mirror 异步维护 Redis 在线集合镜像
func (t *Tracker) mirror(userUuid string, online bool) {
	if t.cache == nil {
		return
	}
	t.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
		defer cancel()
		var err error
		if online {
			err = t.cache.AddToSet(ctx, onlineSetKey, userUuid)
		} else {
			err = t.cache.RemoveFromSet(ctx, onlineSetKey, userUuid)
		}
		if err != nil {
			zap.L().Warn("presence mirror failed", zap.String("user", userUuid), zap.Error(err))
		}
	})
}

// IsOnline 判断用户当前是否在线
func (t *Tracker) IsOnline(userUuid string) bool {
	s := t.shardOf(userUuid)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns[userUuid]) > 0
}

// ConnectionsOf 返回用户当前所有连接ID的快照
func (t *Tracker) ConnectionsOf(userUuid string) []string {
	s := t.shardOf(userUuid)
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.conns[userUuid]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for connId := range set {
		out = append(out, connId)
	}
	return out
}

// OnlineAmong 过滤出给定用户中当前在线的子集
// 消息扇出前先用它收窄投递集合
func (t *Tracker) OnlineAmong(userUuids []string) []string {
	out := make([]string, 0, len(userUuids))
	for _, uid := range userUuids {
		if t.IsOnline(uid) {
			out = append(out, uid)
		}
	}
	return out
}

// ConnCount 返回用户活跃连接数（运维接口用）
func (t *Tracker) ConnCount(userUuid string) int {
	s := t.shardOf(userUuid)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns[userUuid])
}
