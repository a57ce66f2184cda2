// Package handler 提供 HTTP 请求处理器
// 本文件处理聊天室相关的 API 请求
package handler

import (
	"educhat_server/internal/dto/request"
	"educhat_server/internal/service"
	"educhat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// CreateRoomHandler 创建群组聊天室
// POST /room/create
func CreateRoomHandler(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	roomModel, err := service.Svc.Room.CreateRoom(CurrentUserId(c), req.Name, *req.IsPublic)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"uuid": roomModel.Uuid})
}

// JoinRoomHandler 加入聊天室
// POST /room/join
func JoinRoomHandler(c *gin.Context) {
	var req request.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	member, err := service.Svc.Room.JoinRoom(CurrentUserId(c), req.RoomUuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"room_uuid": req.RoomUuid, "role": member.Role})
}

// LeaveRoomHandler 退出聊天室
// POST /room/leave
func LeaveRoomHandler(c *gin.Context) {
	var req request.LeaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Room.LeaveRoom(CurrentUserId(c), req.RoomUuid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddMemberHandler 管理员拉人进入聊天室
// POST /room/member/add
func AddMemberHandler(c *gin.Context) {
	var req request.RoomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if _, err := service.Svc.Room.AddMember(CurrentUserId(c), req.RoomUuid, req.UserUuid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RemoveMemberHandler 移出成员
// POST /room/member/remove
func RemoveMemberHandler(c *gin.Context) {
	var req request.RoomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Room.RemoveMember(CurrentUserId(c), req.RoomUuid, req.UserUuid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// PromoteMemberHandler 提升成员为管理员
// POST /room/member/promote
func PromoteMemberHandler(c *gin.Context) {
	var req request.RoomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Room.PromoteMember(CurrentUserId(c), req.RoomUuid, req.UserUuid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DemoteMemberHandler 将管理员降为普通成员
// POST /room/member/demote
func DemoteMemberHandler(c *gin.Context) {
	var req request.RoomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Room.DemoteMember(CurrentUserId(c), req.RoomUuid, req.UserUuid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetRoomListHandler 获取自己加入的聊天室列表
// GET /room/list
func GetRoomListHandler(c *gin.Context) {
	data, err := service.Svc.Room.ListRoomsForUser(CurrentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetRoomHandler 获取聊天室详情
// GET /room/info?room_uuid=xxx
func GetRoomHandler(c *gin.Context) {
	roomUuid := c.Query("room_uuid")
	if roomUuid == "" {
		HandleParamError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := service.Svc.Room.GetRoom(CurrentUserId(c), roomUuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetRoomMembersHandler 获取聊天室成员列表
// GET /room/members?room_uuid=xxx
func GetRoomMembersHandler(c *gin.Context) {
	roomUuid := c.Query("room_uuid")
	if roomUuid == "" {
		HandleParamError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := service.Svc.Room.ListMembers(CurrentUserId(c), roomUuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
