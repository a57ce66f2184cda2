// Package room 聊天室注册与成员管理
// 三类聊天室走不同的加入规则：全局大厅人人可进，课程聊天室凭选课记录，
// 群组公开可自助加入、私有仅限管理员拉人。
// 授权失败一律返回禁止而非未找到：聊天室的存在性不是秘密
package room

import (
	"go.uber.org/zap"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/pkg/enum/room/room_role_enum"
	"educhat_server/pkg/enum/room/room_type_enum"
	"educhat_server/pkg/errorx"
	"educhat_server/pkg/util/snowflake"
)

// OnlineChecker 在线状态查询出口（成员列表装饰用）
type OnlineChecker interface {
	IsOnline(userUuid string) bool
}

// Service 聊天室服务
type Service struct {
	repos  *repository.Repositories
	online OnlineChecker
}

// NewService 创建聊天室服务
func NewService(repos *repository.Repositories, online OnlineChecker) *Service {
	return &Service{repos: repos, online: online}
}

// CreateRoom 创建群组聊天室
// 终端用户只能创建群组类型；全局大厅和课程聊天室由平台侧预置
func (s *Service) CreateRoom(creatorId, name string, isPublic bool) (*model.ChatRoom, error) {
	roomModel := &model.ChatRoom{
		Uuid:      "R" + snowflake.GenerateIDString(),
		Name:      name,
		Type:      room_type_enum.Group,
		CreatorId: creatorId,
	}
	if isPublic {
		roomModel.IsPublic = 1
	}

	// 建房和创建者入座必须同生共死
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Room.Create(roomModel); err != nil {
			return err
		}
		return tx.RoomMember.Create(&model.RoomMember{
			RoomUuid: roomModel.Uuid,
			UserUuid: creatorId,
			Role:     room_role_enum.Creator,
		})
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("room created",
		zap.String("room", roomModel.Uuid), zap.String("creator", creatorId))
	return roomModel, nil
}

// JoinRoom 加入聊天室
// 重复加入是幂等的，返回既有成员记录
func (s *Service) JoinRoom(userUuid, roomUuid string) (*model.RoomMember, error) {
	roomModel, err := s.repos.Room.FindByUuid(roomUuid)
	if err != nil {
		return nil, err
	}

	if member, err := s.repos.RoomMember.Find(roomUuid, userUuid); err == nil {
		return member, nil
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	switch roomModel.Type {
	case room_type_enum.Global:
		// 全局大厅无条件放行
	case room_type_enum.Course:
		enrolled, err := s.repos.Enrollment.IsEnrolled(userUuid, roomModel.CourseUuid)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, errorx.New(errorx.CodeForbidden, "未选修该课程，无法进入课程聊天室")
		}
	case room_type_enum.Group:
		if roomModel.IsPublic != 1 {
			return nil, errorx.New(errorx.CodeForbidden, "该群组仅限邀请加入")
		}
	default:
		return nil, errorx.New(errorx.CodeInvalidParam, "未知的聊天室类型")
	}

	member := &model.RoomMember{
		RoomUuid: roomUuid,
		UserUuid: userUuid,
		Role:     room_role_enum.Member,
	}
	if err := s.repos.RoomMember.Create(member); err != nil {
		return nil, err
	}
	zap.L().Info("user joined room", zap.String("room", roomUuid), zap.String("user", userUuid))
	return member, nil
}

// LeaveRoom 退出聊天室
// 创建者也可以退出，聊天室本身保留
func (s *Service) LeaveRoom(userUuid, roomUuid string) error {
	if _, err := s.repos.RoomMember.Find(roomUuid, userUuid); err != nil {
		return err
	}
	return s.repos.RoomMember.Delete(roomUuid, userUuid)
}

// AddMember 管理员拉人进入聊天室
func (s *Service) AddMember(actorId, roomUuid, userUuid string) (*model.RoomMember, error) {
	if _, err := s.repos.Room.FindByUuid(roomUuid); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(roomUuid, actorId); err != nil {
		return nil, err
	}
	if _, err := s.repos.User.FindByUuid(userUuid); err != nil {
		return nil, err
	}
	if _, err := s.repos.RoomMember.Find(roomUuid, userUuid); err == nil {
		return nil, errorx.New(errorx.CodeConflict, "该用户已在聊天室中")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	member := &model.RoomMember{
		RoomUuid: roomUuid,
		UserUuid: userUuid,
		Role:     room_role_enum.Member,
	}
	if err := s.repos.RoomMember.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember 移出成员
// 创建者不可被移出；管理员之间互不相辖，只有创建者能移出管理员
func (s *Service) RemoveMember(actorId, roomUuid, userUuid string) error {
	actor, err := s.adminOf(roomUuid, actorId)
	if err != nil {
		return err
	}
	target, err := s.repos.RoomMember.Find(roomUuid, userUuid)
	if err != nil {
		return err
	}
	if target.Role == room_role_enum.Creator {
		return errorx.New(errorx.CodeForbidden, "不能移出创建者")
	}
	if target.Role == room_role_enum.Admin && actor.Role != room_role_enum.Creator {
		return errorx.New(errorx.CodeForbidden, "只有创建者可以移出管理员")
	}
	return s.repos.RoomMember.Delete(roomUuid, userUuid)
}

// PromoteMember 将普通成员提升为管理员
func (s *Service) PromoteMember(actorId, roomUuid, userUuid string) error {
	if err := s.requireAdmin(roomUuid, actorId); err != nil {
		return err
	}
	target, err := s.repos.RoomMember.Find(roomUuid, userUuid)
	if err != nil {
		return err
	}
	if target.Role != room_role_enum.Member {
		return errorx.New(errorx.CodeConflict, "该成员不是普通成员")
	}
	return s.repos.RoomMember.UpdateRole(roomUuid, userUuid, room_role_enum.Admin)
}

// DemoteMember 将管理员降为普通成员，只有创建者可以执行
// 创建者角色不可被降级
func (s *Service) DemoteMember(actorId, roomUuid, userUuid string) error {
	actor, err := s.adminOf(roomUuid, actorId)
	if err != nil {
		return err
	}
	if actor.Role != room_role_enum.Creator {
		return errorx.New(errorx.CodeForbidden, "只有创建者可以降级管理员")
	}
	target, err := s.repos.RoomMember.Find(roomUuid, userUuid)
	if err != nil {
		return err
	}
	if target.Role == room_role_enum.Creator {
		return errorx.New(errorx.CodeForbidden, "创建者角色不可变更")
	}
	if target.Role != room_role_enum.Admin {
		return errorx.New(errorx.CodeConflict, "该成员不是管理员")
	}
	return s.repos.RoomMember.UpdateRole(roomUuid, userUuid, room_role_enum.Member)
}

// IsMember 判断用户是否为聊天室成员（消息路由授权入口）
func (s *Service) IsMember(roomUuid, userUuid string) (bool, error) {
	_, err := s.repos.RoomMember.Find(roomUuid, userUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MemberIdsOf 返回聊天室全部成员ID（消息扇出用）
func (s *Service) MemberIdsOf(roomUuid string) ([]string, error) {
	members, err := s.repos.RoomMember.FindByRoomUuid(roomUuid)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for i := range members {
		ids = append(ids, members[i].UserUuid)
	}
	return ids, nil
}

// ListRoomsForUser 获取用户加入的聊天室列表
func (s *Service) ListRoomsForUser(userUuid string) ([]respond.RoomRespond, error) {
	roomUuids, err := s.repos.RoomMember.FindRoomUuidsByUser(userUuid)
	if err != nil {
		return nil, err
	}
	if len(roomUuids) == 0 {
		return []respond.RoomRespond{}, nil
	}
	rooms, err := s.repos.Room.FindByUuids(roomUuids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.RoomRespond, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomRespond(&rooms[i]))
	}
	return out, nil
}

// GetRoom 获取聊天室信息，仅成员可见
func (s *Service) GetRoom(userUuid, roomUuid string) (*respond.RoomRespond, error) {
	roomModel, err := s.repos.Room.FindByUuid(roomUuid)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.RoomMember.Find(roomUuid, userUuid); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "不是该聊天室成员")
		}
		return nil, err
	}
	resp := toRoomRespond(roomModel)
	members, err := s.repos.RoomMember.FindByRoomUuid(roomUuid)
	if err == nil {
		resp.MemberCount = len(members)
	}
	return &resp, nil
}

// ListMembers 获取聊天室成员列表（含在线状态），仅成员可见
func (s *Service) ListMembers(userUuid, roomUuid string) ([]respond.FriendRespond, error) {
	if _, err := s.repos.RoomMember.Find(roomUuid, userUuid); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "不是该聊天室成员")
		}
		return nil, err
	}
	ids, err := s.MemberIdsOf(roomUuid)
	if err != nil {
		return nil, err
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

// requireAdmin 要求操作者具有管理员及以上角色
func (s *Service) requireAdmin(roomUuid, userUuid string) error {
	_, err := s.adminOf(roomUuid, userUuid)
	return err
}

// adminOf 返回操作者的成员记录，非管理员返回禁止
func (s *Service) adminOf(roomUuid, userUuid string) (*model.RoomMember, error) {
	member, err := s.repos.RoomMember.Find(roomUuid, userUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "不是该聊天室成员")
		}
		return nil, err
	}
	if member.Role < room_role_enum.Admin {
		return nil, errorx.New(errorx.CodeForbidden, "需要管理员权限")
	}
	return member, nil
}

// toRoomRespond 模型转响应
func toRoomRespond(r *model.ChatRoom) respond.RoomRespond {
	return respond.RoomRespond{
		Uuid:          r.Uuid,
		Name:          r.Name,
		Type:          r.Type,
		IsPublic:      r.IsPublic == 1,
		CreatorId:     r.CreatorId,
		CourseUuid:    r.CourseUuid,
		LastMessageId: r.LastMessageId,
	}
}
