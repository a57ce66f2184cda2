// Package chat 实现聊天系统的核心服务层
// router.go
// 核心职责：帧路由与消息投递流水线
// 1. 读协程入站帧按事件分发：进出房间、发消息、输入状态、已读回执
// 2. 发消息在发送方协程内完成校验与授权，再经代理进入目标串行队列
// 3. 目标协程执行投递流水线：去重 -> 入库(带重试) -> 快照扇出 -> 离线通知
package chat

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dto/request"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/internal/service/presence"
	"educhat_server/pkg/constants"
	"educhat_server/pkg/enum/message/message_type_enum"
	"educhat_server/pkg/enum/message/target_type_enum"
	"educhat_server/pkg/errorx"
	"educhat_server/pkg/util/snowflake"
)

// 客户端帧事件名
const (
	EventHeartbeat   = "heartbeat"
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
	EventMarkRead    = "mark_read"
)

// 服务端帧事件名
const (
	EventConnected    = "connected"
	EventJoinedRoom   = "joined_room"
	EventLeftRoom     = "left_room"
	EventNewMessage   = "new_message"
	EventMessageAck   = "message_ack"
	EventUserOnline   = "user_online"
	EventUserOffline  = "user_offline"
	EventUserTyping   = "user_typing"
	EventStopTyping   = "user_stop_typing"
	EventNotification = "notification"
	EventError        = "error"
)

// RoomService 路由器对聊天室服务的依赖
type RoomService interface {
	JoinRoom(userUuid, roomUuid string) (*model.RoomMember, error)
	LeaveRoom(userUuid, roomUuid string) error
	IsMember(roomUuid, userUuid string) (bool, error)
	MemberIdsOf(roomUuid string) ([]string, error)
}

// FriendService 路由器对好友服务的依赖
type FriendService interface {
	AreFriends(a, b string) (bool, error)
	FriendIdsOf(userUuid string) ([]string, error)
}

// OfflineNotifier 路由器对通知分发器的依赖
type OfflineNotifier interface {
	NotifyOfflineMessage(recipientIds []string, message respond.MessageRespond)
	PullUndelivered(userUuid string) ([]respond.NotificationRespond, error)
}

// HistoryInvalidator 新消息入库后失效历史缓存
type HistoryInvalidator interface {
	InvalidateHistory(targetId string)
}

// Router 帧路由器
type Router struct {
	hub      *Hub
	broker   MessageBroker
	presence *presence.Tracker
	deduper  Deduper
	repos    *repository.Repositories
	rooms    RoomService
	friends  FriendService
	notifier OfflineNotifier
	history  HistoryInvalidator

	// saveRetries 入库重试次数，零值回落到默认值
	saveRetries int
}

// NewRouter 创建帧路由器
// notifier、history 可为 nil（测试场景），对应步骤退化为空操作
func NewRouter(hub *Hub, tracker *presence.Tracker, deduper Deduper,
	repos *repository.Repositories, rooms RoomService, friends FriendService,
	notifier OfflineNotifier, history HistoryInvalidator) *Router {
	return &Router{
		hub:      hub,
		presence: tracker,
		deduper:  deduper,
		repos:    repos,
		rooms:    rooms,
		friends:  friends,
		notifier: notifier,
		history:  history,
	}
}

// SetBroker 注入消息代理（代理创建晚于路由器）
func (r *Router) SetBroker(b MessageBroker) {
	r.broker = b
}

// onConnected 连接建立后的首发帧：连接确认 + 补发离线期间的通知
// 登录事件尚未被枢纽消费，首发帧直接写连接缓冲
func (r *Router) onConnected(c *UserConn) {
	c.push(respond.SocketFrameRespond{
		Event: EventConnected,
		Data:  map[string]string{"conn_id": c.ConnId, "user_uuid": c.UserUuid},
	})

	if r.notifier == nil {
		return
	}
	pending, err := r.notifier.PullUndelivered(c.UserUuid)
	if err != nil {
		zap.L().Warn("pull undelivered notifications failed",
			zap.String("user", c.UserUuid), zap.Error(err))
		return
	}
	for i := range pending {
		c.push(respond.SocketFrameRespond{
			Event: EventNotification,
			Data:  pending[i],
		})
	}
}

// Dispatch 分发一帧入站消息
func (r *Router) Dispatch(c *UserConn, raw []byte) {
	var frame request.SocketFrameRequest
	if err := json.Unmarshal(raw, &frame); err != nil {
		r.pushError(c, errorx.ErrInvalidParam, "")
		return
	}

	switch frame.Event {
	case EventHeartbeat:
		// 读截止时间已在读协程顺延，无需回应
	case EventJoinRoom:
		r.handleJoinRoom(c, frame.Data)
	case EventLeaveRoom:
		r.handleLeaveRoom(c, frame.Data)
	case EventSendMessage:
		r.handleSendMessage(c, frame.Data)
	case EventTypingStart:
		r.handleTyping(c, frame.Data, EventUserTyping)
	case EventTypingStop:
		r.handleTyping(c, frame.Data, EventStopTyping)
	case EventMarkRead:
		r.handleMarkRead(c, frame.Data)
	default:
		r.pushError(c, errorx.New(errorx.CodeInvalidParam, "未知的事件类型: "+frame.Event), "")
	}
}

// handleJoinRoom 处理进入房间帧
func (r *Router) handleJoinRoom(c *UserConn, data json.RawMessage) {
	var req request.JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomUuid == "" {
		r.pushError(c, errorx.ErrInvalidParam, "")
		return
	}
	member, err := r.rooms.JoinRoom(c.UserUuid, req.RoomUuid)
	if err != nil {
		r.pushError(c, err, "")
		return
	}
	r.hub.PushToConn(c.ConnId, respond.SocketFrameRespond{
		Event: EventJoinedRoom,
		Data:  respond.RoomEventRespond{RoomUuid: req.RoomUuid, Role: member.Role},
	})
}

// handleLeaveRoom 处理离开房间帧
func (r *Router) handleLeaveRoom(c *UserConn, data json.RawMessage) {
	var req request.LeaveRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomUuid == "" {
		r.pushError(c, errorx.ErrInvalidParam, "")
		return
	}
	if err := r.rooms.LeaveRoom(c.UserUuid, req.RoomUuid); err != nil {
		r.pushError(c, err, "")
		return
	}
	r.hub.PushToConn(c.ConnId, respond.SocketFrameRespond{
		Event: EventLeftRoom,
		Data:  respond.RoomEventRespond{RoomUuid: req.RoomUuid},
	})
}

// handleSendMessage 处理发消息帧
// 在发送方读协程内完成校验与授权后交给代理，
// 同一连接的消息因此天然按发送顺序进入目标队列
func (r *Router) handleSendMessage(c *UserConn, data json.RawMessage) {
	var req request.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.pushError(c, errorx.ErrInvalidParam, "")
		return
	}
	if err := validateSendMessage(&req); err != nil {
		r.pushError(c, err, req.ClientNonce)
		return
	}
	if err := r.authorizeSend(c.UserUuid, req.TargetType, req.TargetId); err != nil {
		r.pushError(c, err, req.ClientNonce)
		return
	}

	env := &TransmitEnvelope{
		ConnId:       c.ConnId,
		SenderId:     c.UserUuid,
		SenderName:   c.SendName,
		SenderAvatar: c.SendAvatar,
		TargetType:   req.TargetType,
		TargetId:     req.TargetId,
		Type:         req.Type,
		Content:      req.Content,
		ClientNonce:  req.ClientNonce,
	}
	if err := r.broker.Publish(context.Background(), env); err != nil {
		zap.L().Error("publish message failed",
			zap.String("sender", c.UserUuid), zap.String("target", req.TargetId), zap.Error(err))
		r.pushError(c, errorx.ErrServerBusy, req.ClientNonce)
	}
}

// validateSendMessage 发消息帧的字段校验
func validateSendMessage(req *request.SendMessageRequest) error {
	if req.TargetType != target_type_enum.Room && req.TargetType != target_type_enum.Conversation {
		return errorx.New(errorx.CodeInvalidParam, "非法的目标类型")
	}
	if req.TargetId == "" {
		return errorx.New(errorx.CodeInvalidParam, "目标不能为空")
	}
	if req.Type < message_type_enum.Text || req.Type > message_type_enum.System {
		return errorx.New(errorx.CodeInvalidParam, "非法的消息类型")
	}
	if req.Content == "" || len(req.Content) > 4096 {
		return errorx.New(errorx.CodeInvalidParam, "消息内容为空或超长")
	}
	if req.ClientNonce == "" || len(req.ClientNonce) > 64 {
		return errorx.New(errorx.CodeInvalidParam, "幂等键为空或超长")
	}
	return nil
}

// authorizeSend 发送授权
// 聊天室看成员资格，会话看参与者资格加好友状态；
// 授权在发送时刻判定，拉黑后既有会话立即失效
func (r *Router) authorizeSend(senderId, targetType, targetId string) error {
	switch targetType {
	case target_type_enum.Room:
		ok, err := r.rooms.IsMember(targetId, senderId)
		if err != nil {
			return err
		}
		if !ok {
			return errorx.New(errorx.CodeForbidden, "不是该聊天室成员")
		}
	case target_type_enum.Conversation:
		conv, err := r.repos.Conversation.FindByUuid(targetId)
		if err != nil {
			return err
		}
		if !conv.Involves(senderId) {
			return errorx.New(errorx.CodeForbidden, "不是该会话的参与者")
		}
		friends, err := r.friends.AreFriends(senderId, conv.OtherOf(senderId))
		if err != nil {
			return err
		}
		if !friends {
			return errorx.New(errorx.CodeForbidden, "仅好友之间可以私聊")
		}
	}
	return nil
}

// Deliver 投递流水线，在目标串行协程内执行
// 去重 -> 入库(带重试) -> 更新目标摘要 -> 在线快照扇出 -> 离线通知
func (r *Router) Deliver(env *TransmitEnvelope) {
	ctx := context.Background()

	// 命中去重窗口：不再入库，用首次的消息ID重新确认
	if firstId, ok := r.deduper.Seen(ctx, env.SenderId, env.TargetId, env.ClientNonce); ok {
		r.hub.PushToUser(env.SenderId, respond.SocketFrameRespond{
			Event: EventMessageAck,
			Data: respond.MessageAckRespond{
				ClientNonce: env.ClientNonce,
				MessageUuid: firstId,
				Duplicate:   true,
			},
		})
		return
	}

	msg := &model.Message{
		Uuid:        snowflake.GenerateID(),
		SendId:      env.SenderId,
		SendName:    env.SenderName,
		SendAvatar:  env.SenderAvatar,
		Type:        env.Type,
		Content:     env.Content,
		ClientNonce: env.ClientNonce,
	}
	if env.TargetType == target_type_enum.Room {
		msg.RoomUuid = env.TargetId
	} else {
		msg.ConversationUuid = env.TargetId
	}

	if err := r.persistWithRetry(msg); err != nil {
		zap.L().Error("persist message failed, giving up",
			zap.String("sender", env.SenderId), zap.String("target", env.TargetId), zap.Error(err))
		if client := r.hub.GetClient(env.ConnId); client != nil {
			r.pushError(client, errorx.Wrap(err, errorx.CodeTransient, "消息保存失败，请重试"), env.ClientNonce)
		}
		return
	}
	r.deduper.Record(ctx, env.SenderId, env.TargetId, env.ClientNonce, msg.Uuid)
	r.updateTargetDigest(env, msg.Uuid)
	if r.history != nil {
		r.history.InvalidateHistory(env.TargetId)
	}

	// 投递集合在扇出前一次性定格：入库后加入目标的用户收不到这条，
	// 退出的用户也不会再收到
	recipients, err := r.recipientsOf(env)
	if err != nil {
		zap.L().Error("resolve recipients failed",
			zap.String("target", env.TargetId), zap.Error(err))
		recipients = nil
	}
	online := r.presence.OnlineAmong(recipients)

	r.hub.PushToUsers(online, respond.SocketFrameRespond{
		Event: EventNewMessage,
		Data:  toMessageRespond(msg, env.TargetType),
	})
	r.hub.PushToUser(env.SenderId, respond.SocketFrameRespond{
		Event: EventMessageAck,
		Data: respond.MessageAckRespond{
			ClientNonce: env.ClientNonce,
			MessageUuid: msg.Uuid,
		},
	})

	if r.notifier != nil {
		offline := subtract(recipients, online, env.SenderId)
		r.notifier.NotifyOfflineMessage(offline, toMessageRespond(msg, env.TargetType))
	}
}

// persistWithRetry 带退避的有限次入库重试
// 超出次数放弃并向发送方回临时性错误，由客户端决定是否重发
func (r *Router) persistWithRetry(msg *model.Message) error {
	retries := r.saveRetries
	if retries <= 0 {
		retries = constants.SAVE_RETRY_COUNT
	}
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(constants.SAVE_RETRY_BACKOFF * time.Duration(attempt))
		}
		if err = r.repos.Message.Create(msg); err == nil {
			return nil
		}
		zap.L().Warn("persist message retry",
			zap.Int64("uuid", msg.Uuid), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return err
}

// updateTargetDigest 更新目标的最新消息摘要，失败只记日志
func (r *Router) updateTargetDigest(env *TransmitEnvelope, messageId int64) {
	var err error
	if env.TargetType == target_type_enum.Room {
		err = r.repos.Room.UpdateLastMessage(env.TargetId, messageId)
	} else {
		err = r.repos.Conversation.UpdateLastMessage(env.TargetId, messageId)
	}
	if err != nil {
		zap.L().Warn("update target digest failed",
			zap.String("target", env.TargetId), zap.Error(err))
	}
}

// recipientsOf 解析消息的投递集合
func (r *Router) recipientsOf(env *TransmitEnvelope) ([]string, error) {
	if env.TargetType == target_type_enum.Room {
		return r.rooms.MemberIdsOf(env.TargetId)
	}
	conv, err := r.repos.Conversation.FindByUuid(env.TargetId)
	if err != nil {
		return nil, err
	}
	return []string{conv.ParticipantOneId, conv.ParticipantTwoId}, nil
}

// handleTyping 处理输入状态帧
// 纯瞬态事件：不入库、不去重、不走目标队列，直接扇出给在线成员
func (r *Router) handleTyping(c *UserConn, data json.RawMessage, outEvent string) {
	var req request.TypingRequest
	if err := json.Unmarshal(data, &req); err != nil || req.TargetId == "" {
		return
	}
	if err := r.authorizeSend(c.UserUuid, req.TargetType, req.TargetId); err != nil {
		return
	}
	recipients, err := r.recipientsOf(&TransmitEnvelope{TargetType: req.TargetType, TargetId: req.TargetId})
	if err != nil {
		return
	}
	online := r.presence.OnlineAmong(subtract(recipients, nil, c.UserUuid))
	r.hub.PushToUsers(online, respond.SocketFrameRespond{
		Event: outEvent,
		Data: respond.TypingRespond{
			UserUuid:   c.UserUuid,
			TargetType: req.TargetType,
			TargetId:   req.TargetId,
		},
	})
}

// handleMarkRead 处理已读回执帧
// 已读集合是消息唯一可变字段，重复标记幂等
func (r *Router) handleMarkRead(c *UserConn, data json.RawMessage) {
	var req request.MarkReadRequest
	if err := json.Unmarshal(data, &req); err != nil || req.MessageUuid == 0 {
		r.pushError(c, errorx.ErrInvalidParam, "")
		return
	}
	msg, err := r.repos.Message.FindByUuid(req.MessageUuid)
	if err != nil {
		r.pushError(c, err, "")
		return
	}

	if msg.RoomUuid != "" {
		ok, err := r.rooms.IsMember(msg.RoomUuid, c.UserUuid)
		if err != nil || !ok {
			r.pushError(c, errorx.New(errorx.CodeForbidden, "不是该聊天室成员"), "")
			return
		}
	} else {
		conv, err := r.repos.Conversation.FindByUuid(msg.ConversationUuid)
		if err != nil || !conv.Involves(c.UserUuid) {
			r.pushError(c, errorx.New(errorx.CodeForbidden, "不是该会话的参与者"), "")
			return
		}
	}

	if !msg.AppendReadBy(c.UserUuid) {
		return
	}
	if err := r.repos.Message.UpdateReadBy(msg.Uuid, msg.ReadBy); err != nil {
		zap.L().Warn("update read_by failed", zap.Int64("uuid", msg.Uuid), zap.Error(err))
	}
}

// pushError 向连接回错误帧
func (r *Router) pushError(c *UserConn, err error, clientNonce string) {
	c.push(respond.SocketFrameRespond{
		Event: EventError,
		Data: respond.ErrorRespond{
			Code:        errorx.GetCode(err),
			Msg:         err.Error(),
			ClientNonce: clientNonce,
		},
	})
}

// toMessageRespond 信封+消息模型转下发帧体
func toMessageRespond(m *model.Message, targetType string) respond.MessageRespond {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return respond.MessageRespond{
		Uuid:        m.Uuid,
		TargetType:  targetType,
		TargetId:    m.TargetId(),
		SendId:      m.SendId,
		SendName:    m.SendName,
		SendAvatar:  m.SendAvatar,
		Type:        m.Type,
		Content:     m.Content,
		ClientNonce: m.ClientNonce,
		CreatedAt:   createdAt.Format(time.DateTime),
	}
}

// subtract 从 all 中剔除 remove 集合与 extra 单个元素
func subtract(all, remove []string, extra string) []string {
	removed := make(map[string]struct{}, len(remove)+1)
	for _, id := range remove {
		removed[id] = struct{}{}
	}
	if extra != "" {
		removed[extra] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, id := range all {
		if _, ok := removed[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
