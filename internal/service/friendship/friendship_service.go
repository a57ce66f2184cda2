// Package friendship 好友关系状态机
// 状态集合：无关系 -> 申请中 -> 已接受/已拒绝，任意状态可被拉黑覆盖；
// 状态迁移的合法性检查全部集中在本包，Repository 层不做业务判断
package friendship

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dao/redis"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/pkg/constants"
	"educhat_server/pkg/enum/friendship/friendship_status_enum"
	"educhat_server/pkg/enum/notification/notification_kind_enum"
	"educhat_server/pkg/errorx"
	"educhat_server/pkg/util/snowflake"
)

// friendSetKeyPrefix 好友ID集合缓存键前缀
const friendSetKeyPrefix = "friendship:friends:"

// EventNotifier 好友事件通知出口
// 由通知分发器实现，这里只依赖接口便于单元测试
type EventNotifier interface {
	Notify(recipientId, kind string, payload interface{}) error
}

// OnlineChecker 在线状态查询出口（好友列表装饰用）
type OnlineChecker interface {
	IsOnline(userUuid string) bool
}

// Service 好友关系服务
type Service struct {
	repos    *repository.Repositories
	cache    redis.AsyncCacheService
	notifier EventNotifier
	online   OnlineChecker
}

// NewService 创建好友关系服务
// cache、notifier、online 均可为 nil（测试场景），对应能力退化为空操作
func NewService(repos *repository.Repositories, cache redis.AsyncCacheService,
	notifier EventNotifier, online OnlineChecker) *Service {
	return &Service{repos: repos, cache: cache, notifier: notifier, online: online}
}

// SendRequest 发起好友申请
// 迁移规则：
//   - 无关系      -> 申请中（创建新记录）
//   - 已拒绝      -> 申请中（复用记录，允许重新申请）
//   - 申请中      -> 冲突（无论哪一方发起的）
//   - 已接受      -> 冲突（已经是好友）
//   - 已拉黑      -> 禁止
func (s *Service) SendRequest(requesterId, addresseeId, message string) (*model.Friendship, error) {
	if requesterId == addresseeId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能添加自己为好友")
	}
	if _, err := s.repos.User.FindByUuid(addresseeId); err != nil {
		return nil, err
	}

	existing, err := s.repos.Friendship.FindByPair(requesterId, addresseeId)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case friendship_status_enum.Pending:
			if existing.RequesterId == requesterId {
				return nil, errorx.New(errorx.CodeConflict, "好友申请已发送，请勿重复申请")
			}
			return nil, errorx.New(errorx.CodeConflict, "对方已向你发起申请，请直接处理")
		case friendship_status_enum.Accepted:
			return nil, errorx.New(errorx.CodeConflict, "你们已经是好友")
		case friendship_status_enum.Blocked:
			return nil, errorx.New(errorx.CodeForbidden, "无法向该用户发起申请")
		case friendship_status_enum.Declined:
			// 被拒绝后允许重新申请，复用记录回到申请中
			existing.RequesterId = requesterId
			existing.Status = friendship_status_enum.Pending
			existing.Message = message
			existing.RespondedAt = sql.NullTime{}
			if err := s.repos.Friendship.Update(existing); err != nil {
				return nil, err
			}
			s.pushFriendEvent(addresseeId, notification_kind_enum.FriendRequest, existing)
			return existing, nil
		}
	}

	one, two := requesterId, addresseeId
	if one > two {
		one, two = two, one
	}
	f := &model.Friendship{
		Uuid:        "F" + snowflake.GenerateIDString(),
		UserOneId:   one,
		UserTwoId:   two,
		RequesterId: requesterId,
		Status:      friendship_status_enum.Pending,
		Message:     message,
	}
	if err := s.repos.Friendship.Create(f); err != nil {
		return nil, err
	}
	zap.L().Info("friend request sent",
		zap.String("requester", requesterId), zap.String("addressee", addresseeId))
	s.pushFriendEvent(addresseeId, notification_kind_enum.FriendRequest, f)
	return f, nil
}

// Respond 响应好友申请（接受或拒绝）
// 只有被申请方可以响应；申请方操作返回禁止而非未找到，
// 因为关系对双方都可见，隐藏它没有意义
func (s *Service) Respond(callerId, requesterId string, accept bool) (*model.Friendship, error) {
	f, err := s.repos.Friendship.FindByPair(callerId, requesterId)
	if err != nil {
		return nil, err
	}
	if f.Status != friendship_status_enum.Pending {
		return nil, errorx.New(errorx.CodeConflict, "该申请已被处理")
	}
	if f.RequesterId == callerId {
		return nil, errorx.New(errorx.CodeForbidden, "不能处理自己发出的申请")
	}
	if f.RequesterId != requesterId {
		return nil, errorx.New(errorx.CodeInvalidParam, "申请方不匹配")
	}

	if accept {
		f.Status = friendship_status_enum.Accepted
	} else {
		f.Status = friendship_status_enum.Declined
	}
	f.RespondedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := s.repos.Friendship.Update(f); err != nil {
		return nil, err
	}

	s.invalidateFriendSet(f.UserOneId, f.UserTwoId)
	kind := notification_kind_enum.FriendDeclined
	if accept {
		kind = notification_kind_enum.FriendAccepted
	}
	s.pushFriendEvent(requesterId, kind, f)
	zap.L().Info("friend request responded",
		zap.String("addressee", callerId), zap.String("requester", requesterId), zap.Bool("accept", accept))
	return f, nil
}

// CancelRequest 撤回自己发出的待处理申请，记录删除回到无关系状态
func (s *Service) CancelRequest(callerId, addresseeId string) error {
	f, err := s.repos.Friendship.FindByPair(callerId, addresseeId)
	if err != nil {
		return err
	}
	if f.Status != friendship_status_enum.Pending {
		return errorx.New(errorx.CodeConflict, "该申请已被处理，无法撤回")
	}
	if f.RequesterId != callerId {
		return errorx.New(errorx.CodeForbidden, "只能撤回自己发出的申请")
	}
	return s.repos.Friendship.Delete(f)
}

// Block 拉黑用户
// 拉黑覆盖任意既有状态（包括无关系），记录拉黑方；
// 已被对方拉黑时操作返回禁止
func (s *Service) Block(callerId, targetId string) (*model.Friendship, error) {
	if callerId == targetId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能拉黑自己")
	}
	if _, err := s.repos.User.FindByUuid(targetId); err != nil {
		return nil, err
	}

	f, err := s.repos.Friendship.FindByPair(callerId, targetId)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}

	if f != nil {
		if f.Status == friendship_status_enum.Blocked {
			if f.BlockerId == callerId {
				return f, nil // 重复拉黑幂等
			}
			return nil, errorx.New(errorx.CodeForbidden, "无法操作该用户")
		}
		f.Status = friendship_status_enum.Blocked
		f.BlockerId = callerId
		f.RespondedAt = sql.NullTime{Time: time.Now(), Valid: true}
		if err := s.repos.Friendship.Update(f); err != nil {
			return nil, err
		}
		s.invalidateFriendSet(f.UserOneId, f.UserTwoId)
		return f, nil
	}

	one, two := callerId, targetId
	if one > two {
		one, two = two, one
	}
	f = &model.Friendship{
		Uuid:        "F" + snowflake.GenerateIDString(),
		UserOneId:   one,
		UserTwoId:   two,
		RequesterId: callerId,
		Status:      friendship_status_enum.Blocked,
		BlockerId:   callerId,
		RespondedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}
	if err := s.repos.Friendship.Create(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Unblock 解除拉黑，记录删除回到无关系状态
// 只有当初执行拉黑的一方可以解除
func (s *Service) Unblock(callerId, targetId string) error {
	f, err := s.repos.Friendship.FindByPair(callerId, targetId)
	if err != nil {
		return err
	}
	if f.Status != friendship_status_enum.Blocked {
		return errorx.New(errorx.CodeConflict, "该用户未被拉黑")
	}
	if f.BlockerId != callerId {
		return errorx.New(errorx.CodeForbidden, "只有拉黑方可以解除拉黑")
	}
	if err := s.repos.Friendship.Delete(f); err != nil {
		return err
	}
	s.invalidateFriendSet(f.UserOneId, f.UserTwoId)
	return nil
}

// AreFriends 判断两个用户是否为已接受的好友关系
// 私聊发送授权的唯一判定入口
func (s *Service) AreFriends(a, b string) (bool, error) {
	f, err := s.repos.Friendship.FindByPair(a, b)
	if err != nil {
		if errorx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return f.Status == friendship_status_enum.Accepted, nil
}

// IsBlocked 判断一对用户间是否存在拉黑关系（任一方向）
func (s *Service) IsBlocked(a, b string) (bool, error) {
	f, err := s.repos.Friendship.FindByPair(a, b)
	if err != nil {
		if errorx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return f.Status == friendship_status_enum.Blocked, nil
}

// FriendIdsOf 返回用户的好友ID集合
// 读路径带 Redis 集合缓存，写路径（接受/拉黑/解除）负责失效
func (s *Service) FriendIdsOf(userUuid string) ([]string, error) {
	key := friendSetKeyPrefix + userUuid
	if s.cache != nil {
		if members, err := s.cache.GetSetMembers(context.Background(), key); err == nil && len(members) > 0 {
			return members, nil
		}
	}

	relations, err := s.repos.Friendship.FindAcceptedByUser(userUuid)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(relations))
	for i := range relations {
		ids = append(ids, relations[i].OtherOf(userUuid))
	}

	if s.cache != nil && len(ids) > 0 {
		toCache := make([]interface{}, len(ids))
		for i, id := range ids {
			toCache[i] = id
		}
		s.cache.SubmitTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
			defer cancel()
			if err := s.cache.AddToSet(ctx, key, toCache...); err != nil {
				zap.L().Warn("cache friend set failed", zap.String("user", userUuid), zap.Error(err))
			}
		})
	}
	return ids, nil
}

// ListFriends 获取好友列表（含昵称、头像和在线状态）
func (s *Service) ListFriends(userUuid string) ([]respond.FriendRespond, error) {
	ids, err := s.FriendIdsOf(userUuid)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []respond.FriendRespond{}, nil
	}
	users, err := s.repos.User.FindByUuids(ids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.FriendRespond, 0, len(users))
	for i := range users {
		item := respond.FriendRespond{
			UserUuid: users[i].Uuid,
			Nickname: users[i].Nickname,
			Avatar:   users[i].Avatar,
		}
		if s.online != nil {
			item.Online = s.online.IsOnline(users[i].Uuid)
		}
		out = append(out, item)
	}
	return out, nil
}

// ListPendingIncoming 获取收到的待处理申请
func (s *Service) ListPendingIncoming(userUuid string) ([]respond.FriendshipRespond, error) {
	relations, err := s.repos.Friendship.FindPendingForAddressee(userUuid)
	if err != nil {
		return nil, err
	}
	return toFriendshipResponds(relations), nil
}

// ListPendingOutgoing 获取发出的待处理申请
func (s *Service) ListPendingOutgoing(userUuid string) ([]respond.FriendshipRespond, error) {
	relations, err := s.repos.Friendship.FindPendingForRequester(userUuid)
	if err != nil {
		return nil, err
	}
	return toFriendshipResponds(relations), nil
}

// toFriendshipResponds 模型转响应
func toFriendshipResponds(relations []model.Friendship) []respond.FriendshipRespond {
	out := make([]respond.FriendshipRespond, 0, len(relations))
	for i := range relations {
		f := &relations[i]
		item := respond.FriendshipRespond{
			Uuid:        f.Uuid,
			RequesterId: f.RequesterId,
			AddresseeId: f.AddresseeId(),
			Status:      f.Status,
			Message:     f.Message,
			CreatedAt:   f.CreatedAt.Format(time.DateTime),
		}
		if f.RespondedAt.Valid {
			item.RespondedAt = f.RespondedAt.Time.Format(time.DateTime)
		}
		out = append(out, item)
	}
	return out
}

// pushFriendEvent 通过通知分发器推送好友事件
func (s *Service) pushFriendEvent(recipientId, kind string, f *model.Friendship) {
	if s.notifier == nil {
		return
	}
	payload := respond.FriendshipRespond{
		Uuid:        f.Uuid,
		RequesterId: f.RequesterId,
		AddresseeId: f.AddresseeId(),
		Status:      f.Status,
		Message:     f.Message,
		CreatedAt:   f.CreatedAt.Format(time.DateTime),
	}
	if err := s.notifier.Notify(recipientId, kind, payload); err != nil {
		zap.L().Warn("push friend event failed",
			zap.String("recipient", recipientId), zap.String("kind", kind), zap.Error(err))
	}
}

// invalidateFriendSet 失效双方的好友集合缓存
func (s *Service) invalidateFriendSet(one, two string) {
	if s.cache == nil {
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
		defer cancel()
		for _, uid := range []string{one, two} {
			if err := s.cache.Delete(ctx, friendSetKeyPrefix+uid); err != nil {
				zap.L().Warn("invalidate friend set failed", zap.String("user", uid), zap.Error(err))
			}
		}
	})
}
