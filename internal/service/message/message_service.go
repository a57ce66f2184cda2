// Package message 历史消息拉取
// 实时投递在 service/chat，这里只负责查询路径：
// 授权检查与消息路由器同口径，最新一页带 Redis 缓存
package message

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dao/redis"
	"educhat_server/internal/dto/request"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/pkg/constants"
	"educhat_server/pkg/enum/message/target_type_enum"
	"educhat_server/pkg/errorx"
)

// historyKeyPrefix 最新一页历史消息的缓存键前缀
const historyKeyPrefix = "message:history:"

// Service 历史消息服务
type Service struct {
	repos *repository.Repositories
	cache redis.AsyncCacheService
}

// NewService 创建历史消息服务
// cache 可以为 nil（测试场景），此时每次都落库查询
func NewService(repos *repository.Repositories, cache redis.AsyncCacheService) *Service {
	return &Service{repos: repos, cache: cache}
}

// GetMessageList 拉取目标的历史消息
// 聊天室要求成员资格，会话要求参与者资格，越权返回禁止
func (s *Service) GetMessageList(userUuid string, req *request.GetMessageListRequest) ([]respond.MessageRespond, error) {
	limit := req.Limit
	if limit <= 0 || limit > constants.HISTORY_PULL_LIMIT {
		limit = constants.HISTORY_PULL_LIMIT
	}

	switch req.TargetType {
	case target_type_enum.Room:
		if _, err := s.repos.RoomMember.Find(req.TargetId, userUuid); err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.New(errorx.CodeForbidden, "不是该聊天室成员")
			}
			return nil, err
		}
		return s.fetch(req.TargetType, req.TargetId, req.Before, limit, func() ([]model.Message, error) {
			return s.repos.Message.FindByRoomUuid(req.TargetId, req.Before, limit)
		})
	case target_type_enum.Conversation:
		conv, err := s.repos.Conversation.FindByUuid(req.TargetId)
		if err != nil {
			return nil, err
		}
		if !conv.Involves(userUuid) {
			return nil, errorx.New(errorx.CodeForbidden, "不是该会话的参与者")
		}
		return s.fetch(req.TargetType, req.TargetId, req.Before, limit, func() ([]model.Message, error) {
			return s.repos.Message.FindByConversationUuid(req.TargetId, req.Before, limit)
		})
	default:
		return nil, errorx.ErrInvalidParam
	}
}

// fetch 查询并转换历史消息
// 只有最新一页（无游标、满额拉取）走缓存，翻页请求直接落库
func (s *Service) fetch(targetType, targetId string, before int64, limit int,
	query func() ([]model.Message, error)) ([]respond.MessageRespond, error) {

	cacheable := s.cache != nil && before == 0 && limit == constants.HISTORY_PULL_LIMIT
	key := historyKeyPrefix + targetId

	if cacheable {
		if cached, err := s.cache.Get(context.Background(), key); err == nil && cached != "" {
			var out []respond.MessageRespond
			if err := json.Unmarshal([]byte(cached), &out); err == nil {
				return out, nil
			}
		}
	}

	list, err := query()
	if err != nil {
		return nil, err
	}
	out := make([]respond.MessageRespond, 0, len(list))
	for i := range list {
		out = append(out, ToMessageRespond(&list[i], targetType))
	}

	if cacheable && len(out) > 0 {
		raw, err := json.Marshal(out)
		if err == nil {
			s.cache.SubmitTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
				defer cancel()
				if err := s.cache.Set(ctx, key, string(raw), constants.REDIS_TIMEOUT*time.Minute); err != nil {
					zap.L().Warn("cache message history failed", zap.String("target", targetId), zap.Error(err))
				}
			})
		}
	}
	return out, nil
}

// InvalidateHistory 失效目标的历史缓存（新消息入库后调用）
func (s *Service) InvalidateHistory(targetId string) {
	if s.cache == nil {
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
		defer cancel()
		if err := s.cache.Delete(ctx, historyKeyPrefix+targetId); err != nil {
			zap.L().Warn("invalidate message history failed", zap.String("target", targetId), zap.Error(err))
		}
	})
}

// ToMessageRespond 消息模型转响应
func ToMessageRespond(m *model.Message, targetType string) respond.MessageRespond {
	resp := respond.MessageRespond{
		Uuid:        m.Uuid,
		TargetType:  targetType,
		TargetId:    m.TargetId(),
		SendId:      m.SendId,
		SendName:    m.SendName,
		SendAvatar:  m.SendAvatar,
		Type:        m.Type,
		Content:     m.Content,
		ClientNonce: m.ClientNonce,
		CreatedAt:   m.CreatedAt.Format(time.DateTime),
	}
	set := m.ReadBySet()
	if len(set) > 0 {
		readBy := make([]string, 0, len(set))
		for id := range set {
			readBy = append(readBy, id)
		}
		resp.ReadBy = readBy
	}
	return resp
}
