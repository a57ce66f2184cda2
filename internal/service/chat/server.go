// Package chat 实现聊天系统的核心服务层
// server.go
// 核心职责：聊天服务器聚合结构和依赖注入
// 组装枢纽、路由器与消息代理，提供统一的生命周期管理
package chat

import (
	"time"

	"educhat_server/internal/dao/mysql/repository"
	myredis "educhat_server/internal/dao/redis"
	"educhat_server/internal/service/presence"
	"educhat_server/pkg/constants"
)

// ChatServer 聊天服务器聚合结构
type ChatServer struct {
	Hub    *Hub
	Router *Router

	// Broker 根据配置可能是 ChannelBroker 或 KafkaBroker
	Broker MessageBroker

	// KafkaClient 仅 Kafka 模式使用
	KafkaClient *KafkaClient

	repos *repository.Repositories
	mode  string

	// heartbeat 心跳窗口，读截止时间和 ping 间隔都由它推出
	heartbeat time.Duration
}

// ChatServerConfig 聊天服务器装配配置
type ChatServerConfig struct {
	Mode     string // "channel" 或 "kafka"
	Repos    *repository.Repositories
	Cache    myredis.AsyncCacheService
	Tracker  *presence.Tracker
	Rooms    RoomService
	Friends  FriendService
	Notifier OfflineNotifier
	History  HistoryInvalidator

	// Deduper 为空时按 Cache 有无自动选择 Redis/内存实现
	Deduper Deduper

	// 运行参数，零值回落到 pkg/constants 的默认值
	HeartbeatWindow time.Duration
	DedupWindow     time.Duration
	SaveRetryCount  int
}

// NewChatServer 创建聊天服务器实例
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	heartbeat := cfg.HeartbeatWindow
	if heartbeat <= 0 {
		heartbeat = constants.HEARTBEAT_WINDOW
	}
	dedupWindow := cfg.DedupWindow
	if dedupWindow <= 0 {
		dedupWindow = constants.DEDUP_WINDOW
	}

	deduper := cfg.Deduper
	if deduper == nil {
		if cfg.Cache != nil {
			deduper = NewRedisDeduper(cfg.Cache, dedupWindow)
		} else {
			deduper = NewMemoryDeduper(dedupWindow)
		}
	}

	hub := NewHub(cfg.Tracker)
	router := NewRouter(hub, cfg.Tracker, deduper, cfg.Repos,
		cfg.Rooms, cfg.Friends, cfg.Notifier, cfg.History)
	router.saveRetries = cfg.SaveRetryCount
	hub.SetProcessor(router.Deliver)
	cfg.Tracker.SetAnnouncer(router.AnnouncePresence)

	cs := &ChatServer{
		Hub:       hub,
		Router:    router,
		repos:     cfg.Repos,
		mode:      cfg.Mode,
		heartbeat: heartbeat,
	}

	if cfg.Mode == "kafka" {
		cs.KafkaClient = NewKafkaClient()
		cs.Broker = NewKafkaBroker(hub, cs.KafkaClient)
	} else {
		cs.Broker = NewChannelBroker(hub)
	}
	router.SetBroker(cs.Broker)
	return cs
}

// InitKafka 初始化 Kafka 连接（仅 Kafka 模式需要调用）
func (cs *ChatServer) InitKafka() {
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaInit()
	}
}

// Start 启动聊天服务器
func (cs *ChatServer) Start() {
	cs.Hub.Start()
	cs.Broker.Start()
}

// Close 关闭聊天服务器
func (cs *ChatServer) Close() {
	cs.Broker.Close()
	cs.Hub.Close()
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaClose()
	}
}
