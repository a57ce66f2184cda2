// Package conversation 私聊会话解析
// 会话ID由归一化用户对确定性派生：同一对用户无论谁先打开会话、
// 多实例并发解析多少次，得到的都是同一个会话
package conversation

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/pkg/errorx"
)

// Service 私聊会话服务
type Service struct {
	repos *repository.Repositories
}

// NewService 创建私聊会话服务
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// normalizePair 将用户对归一化为字典序 (小, 大)
func normalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// DeriveUuid 从归一化用户对派生会话ID
// 格式：C + sha1(小:大) 十六进制前19位，与用户表的 char(20) 主键同宽
func DeriveUuid(a, b string) string {
	one, two := normalizePair(a, b)
	sum := sha1.Sum([]byte(one + ":" + two))
	return "C" + hex.EncodeToString(sum[:])[:19]
}

// GetOrCreate 解析（必要时创建）一对用户之间的会话
// 创建会话不做好友检查：会话存在不代表可以发消息，
// 发送授权由消息路由器在发送时刻按好友状态判定
func (s *Service) GetOrCreate(userUuid, peerUuid string) (*model.PrivateConversation, error) {
	if userUuid == peerUuid {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能与自己建立会话")
	}
	if _, err := s.repos.User.FindByUuid(peerUuid); err != nil {
		return nil, err
	}

	conv, err := s.repos.Conversation.FindByPair(userUuid, peerUuid)
	if err == nil {
		return conv, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}

	one, two := normalizePair(userUuid, peerUuid)
	conv = &model.PrivateConversation{
		Uuid:             DeriveUuid(one, two),
		ParticipantOneId: one,
		ParticipantTwoId: two,
	}
	if err := s.repos.Conversation.Create(conv); err != nil {
		// 并发解析同一用户对时另一方可能先插入成功，唯一索引兜底后重查
		if existing, findErr := s.repos.Conversation.FindByPair(userUuid, peerUuid); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	zap.L().Info("private conversation created",
		zap.String("uuid", conv.Uuid), zap.String("one", one), zap.String("two", two))
	return conv, nil
}

// Get 根据会话ID获取会话，非参与者不可见
func (s *Service) Get(userUuid, convUuid string) (*model.PrivateConversation, error) {
	conv, err := s.repos.Conversation.FindByUuid(convUuid)
	if err != nil {
		return nil, err
	}
	if !conv.Involves(userUuid) {
		return nil, errorx.New(errorx.CodeForbidden, "不是该会话的参与者")
	}
	return conv, nil
}

// ListForUser 获取用户参与的会话列表（含对端用户摘要）
func (s *Service) ListForUser(userUuid string) ([]respond.ConversationRespond, error) {
	convs, err := s.repos.Conversation.FindByUser(userUuid)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []respond.ConversationRespond{}, nil
	}

	peerIds := make([]string, 0, len(convs))
	for i := range convs {
		peerIds = append(peerIds, convs[i].OtherOf(userUuid))
	}
	peers, err := s.repos.User.FindByUuids(peerIds)
	if err != nil {
		return nil, err
	}
	peerByUuid := make(map[string]*model.UserInfo, len(peers))
	for i := range peers {
		peerByUuid[peers[i].Uuid] = &peers[i]
	}

	out := make([]respond.ConversationRespond, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		item := respond.ConversationRespond{
			Uuid:          conv.Uuid,
			PeerId:        conv.OtherOf(userUuid),
			LastMessageId: conv.LastMessageId,
		}
		if conv.LastActivityAt.Valid {
			item.LastActivityAt = conv.LastActivityAt.Time.Format(time.DateTime)
		}
		if peer, ok := peerByUuid[item.PeerId]; ok {
			item.PeerNickname = peer.Nickname
			item.PeerAvatar = peer.Avatar
		}
		out = append(out, item)
	}
	return out, nil
}
