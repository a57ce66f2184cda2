// Package notification 通知分发
// 好友事件和发给离线用户的消息摘要都从这里出去：
// 接收方在线走 WebSocket 即时推送并标记已投递，离线落库等下次登录拉取
package notification

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/pkg/enum/notification/notification_kind_enum"
	"educhat_server/pkg/util/snowflake"
)

// Pusher 在线推送出口，由聊天服务的连接枢纽实现
// 返回 false 表示接收方没有任何活跃连接
type Pusher interface {
	PushToUser(userUuid string, frame respond.SocketFrameRespond) bool
}

// Service 通知分发服务
type Service struct {
	repos  *repository.Repositories
	pusher Pusher
}

// NewService 创建通知分发服务
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// SetPusher 注入在线推送出口
// 连接枢纽在服务装配阶段晚于通知服务创建，所以走 setter 注入
func (s *Service) SetPusher(p Pusher) {
	s.pusher = p
}

// Notify 向用户分发一条通知
// 先落库再尝试推送：推送成功补标已投递，失败留待登录拉取。
// 落库失败时通知直接丢弃并记日志，不阻塞调用方的主流程
func (s *Service) Notify(recipientId, kind string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	n := &model.Notification{
		Uuid:        "N" + snowflake.GenerateIDString(),
		RecipientId: recipientId,
		Kind:        kind,
		Payload:     string(raw),
	}
	if err := s.repos.Notification.Create(n); err != nil {
		zap.L().Error("persist notification failed",
			zap.String("recipient", recipientId), zap.String("kind", kind), zap.Error(err))
		return err
	}

	if s.pusher == nil {
		return nil
	}
	frame := respond.SocketFrameRespond{
		Event: kind,
		Data: respond.NotificationRespond{
			Uuid:      n.Uuid,
			Kind:      kind,
			Payload:   raw,
			CreatedAt: time.Now().Format(time.DateTime),
		},
	}
	if s.pusher.PushToUser(recipientId, frame) {
		if err := s.repos.Notification.MarkDelivered([]string{n.Uuid}); err != nil {
			zap.L().Warn("mark notification delivered failed",
				zap.String("uuid", n.Uuid), zap.Error(err))
		}
	}
	return nil
}

// NotifyOfflineMessage 为离线的消息接收方落一条消息摘要通知
// 调用方已判定接收方离线，这里不再尝试推送
func (s *Service) NotifyOfflineMessage(recipientIds []string, message respond.MessageRespond) {
	if len(recipientIds) == 0 {
		return
	}
	raw, err := json.Marshal(message)
	if err != nil {
		zap.L().Error("marshal offline message payload failed", zap.Error(err))
		return
	}
	for _, recipientId := range recipientIds {
		n := &model.Notification{
			Uuid:        "N" + snowflake.GenerateIDString(),
			RecipientId: recipientId,
			Kind:        notification_kind_enum.NewMessage,
			Payload:     string(raw),
		}
		if err := s.repos.Notification.Create(n); err != nil {
			zap.L().Error("persist offline message notification failed",
				zap.String("recipient", recipientId), zap.Error(err))
		}
	}
}

// PullUndelivered 拉取用户的未投递通知并标记已投递
// 客户端建立连接后调用一次，补齐离线期间错过的事件
func (s *Service) PullUndelivered(userUuid string) ([]respond.NotificationRespond, error) {
	list, err := s.repos.Notification.FindUndelivered(userUuid)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []respond.NotificationRespond{}, nil
	}

	uuids := make([]string, 0, len(list))
	out := make([]respond.NotificationRespond, 0, len(list))
	for i := range list {
		n := &list[i]
		uuids = append(uuids, n.Uuid)
		out = append(out, respond.NotificationRespond{
			Uuid:      n.Uuid,
			Kind:      n.Kind,
			Payload:   json.RawMessage(n.Payload),
			CreatedAt: n.CreatedAt.Format(time.DateTime),
		})
	}
	if err := s.repos.Notification.MarkDelivered(uuids); err != nil {
		return nil, err
	}
	return out, nil
}
