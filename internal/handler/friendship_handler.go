// Package handler 提供 HTTP 请求处理器
// 本文件处理好友关系相关的 API 请求
package handler

import (
	"educhat_server/internal/dto/request"
	"educhat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// SendFriendRequestHandler 发起好友申请
// POST /friendship/request
func SendFriendRequestHandler(c *gin.Context) {
	var req request.FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	f, err := service.Svc.Friendship.SendRequest(CurrentUserId(c), req.AddresseeId, req.Message)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"uuid": f.Uuid})
}

// RespondFriendRequestHandler 响应好友申请（接受或拒绝）
// POST /friendship/respond
func RespondFriendRequestHandler(c *gin.Context) {
	var req request.RespondFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	f, err := service.Svc.Friendship.Respond(CurrentUserId(c), req.RequesterId, *req.Accept)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"uuid": f.Uuid, "status": f.Status})
}

// CancelFriendRequestHandler 撤回自己发出的好友申请
// POST /friendship/cancel
func CancelFriendRequestHandler(c *gin.Context) {
	var req request.CancelFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Friendship.CancelRequest(CurrentUserId(c), req.AddresseeId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// BlockUserHandler 拉黑用户
// POST /friendship/block
func BlockUserHandler(c *gin.Context) {
	var req request.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if _, err := service.Svc.Friendship.Block(CurrentUserId(c), req.TargetId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UnblockUserHandler 解除拉黑
// POST /friendship/unblock
func UnblockUserHandler(c *gin.Context) {
	var req request.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Friendship.Unblock(CurrentUserId(c), req.TargetId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetFriendListHandler 获取好友列表
// GET /friendship/list
func GetFriendListHandler(c *gin.Context) {
	data, err := service.Svc.Friendship.ListFriends(CurrentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetPendingIncomingHandler 获取收到的待处理申请
// GET /friendship/pending/incoming
func GetPendingIncomingHandler(c *gin.Context) {
	data, err := service.Svc.Friendship.ListPendingIncoming(CurrentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetPendingOutgoingHandler 获取发出的待处理申请
// GET /friendship/pending/outgoing
func GetPendingOutgoingHandler(c *gin.Context) {
	data, err := service.Svc.Friendship.ListPendingOutgoing(CurrentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
