// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	"educhat_server/internal/config"
	"educhat_server/internal/dao/mysql/repository"
	myredis "educhat_server/internal/dao/redis"
	"educhat_server/internal/service/chat"
	"educhat_server/internal/service/conversation"
	"educhat_server/internal/service/friendship"
	"educhat_server/internal/service/message"
	"educhat_server/internal/service/notification"
	"educhat_server/internal/service/presence"
	"educhat_server/internal/service/room"
	"educhat_server/pkg/constants"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	Presence     *presence.Tracker
	Friendship   *friendship.Service
	Room         *room.Service
	Conversation *conversation.Service
	Notification *notification.Service
	Message      *message.Service
	Chat         *chat.ChatServer
}

// NewServices 创建并注入所有 Service 实例
// 装配顺序受依赖方向约束：
//  1. 在线状态跟踪器（无业务依赖）
//  2. 通知分发器（暂无推送出口）
//  3. 好友/聊天室/会话/消息各 Service
//  4. 聊天服务器（注入前面全部组件）
//  5. 回填通知分发器的推送出口（连接枢纽）
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService) *Services {
	conf := config.GetConfig()

	debounce := constants.PRESENCE_DEBOUNCE
	if conf.ChatConfig.PresenceDebounceMillis > 0 {
		debounce = time.Duration(conf.ChatConfig.PresenceDebounceMillis) * time.Millisecond
	}
	tracker := presence.NewTracker(debounce, cache)

	notificationSvc := notification.NewService(repos)
	friendshipSvc := friendship.NewService(repos, cache, notificationSvc, tracker)
	roomSvc := room.NewService(repos, tracker)
	conversationSvc := conversation.NewService(repos)
	messageSvc := message.NewService(repos, cache)

	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode:            conf.KafkaConfig.MessageMode,
		Repos:           repos,
		Cache:           cache,
		Tracker:         tracker,
		Rooms:           roomSvc,
		Friends:         friendshipSvc,
		Notifier:        notificationSvc,
		History:         messageSvc,
		HeartbeatWindow: time.Duration(conf.ChatConfig.HeartbeatSeconds) * time.Second,
		DedupWindow:     time.Duration(conf.ChatConfig.DedupWindowSeconds) * time.Second,
		SaveRetryCount:  conf.ChatConfig.SaveRetryCount,
	})
	notificationSvc.SetPusher(chatServer.Hub)

	return &Services{
		Presence:     tracker,
		Friendship:   friendshipSvc,
		Room:         roomSvc,
		Conversation: conversationSvc,
		Notification: notificationSvc,
		Message:      messageSvc,
		Chat:         chatServer,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Friendship.SendRequest() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository 和 Redis 初始化之后
func InitServices(repos *repository.Repositories, cache myredis.AsyncCacheService) {
	Svc = NewServices(repos, cache)
}
