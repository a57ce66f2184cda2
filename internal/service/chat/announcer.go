// Package chat 实现聊天系统的核心服务层
// announcer.go
// 核心职责：上下线事件扇出
// 受众 = 好友 ∪ 共同聊天室成员，事件只推给其中当前在线的用户；
// 防抖已由在线状态跟踪器完成，到这里的都是稳定的状态变化
package chat

import (
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dto/respond"
)

// AnnouncePresence 向相关用户扇出一次上下线事件
// 由在线状态跟踪器的防抖回调触发，运行在独立协程
func (r *Router) AnnouncePresence(userUuid string, online bool) {
	audience, err := r.presenceAudience(userUuid)
	if err != nil {
		zap.L().Warn("resolve presence audience failed",
			zap.String("user", userUuid), zap.Error(err))
		return
	}
	if len(audience) == 0 {
		return
	}

	event := EventUserOffline
	if online {
		event = EventUserOnline
	}
	r.hub.PushToUsers(r.presence.OnlineAmong(audience), respond.SocketFrameRespond{
		Event: event,
		Data: respond.PresenceRespond{
			UserUuid: userUuid,
			At:       time.Now().Format(time.DateTime),
		},
	})
}

// presenceAudience 计算上下线事件的受众（去重，不含本人）
func (r *Router) presenceAudience(userUuid string) ([]string, error) {
	seen := make(map[string]struct{})

	friendIds, err := r.friends.FriendIdsOf(userUuid)
	if err != nil {
		return nil, err
	}
	for _, id := range friendIds {
		seen[id] = struct{}{}
	}

	roomUuids, err := r.repos.RoomMember.FindRoomUuidsByUser(userUuid)
	if err != nil {
		return nil, err
	}
	for _, roomUuid := range roomUuids {
		memberIds, err := r.rooms.MemberIdsOf(roomUuid)
		if err != nil {
			zap.L().Warn("list room members failed", zap.String("room", roomUuid), zap.Error(err))
			continue
		}
		for _, id := range memberIds {
			seen[id] = struct{}{}
		}
	}

	delete(seen, userUuid)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out, nil
}
