// Package handler 提供 HTTP 请求处理器
// 本文件处理私聊会话相关的 API 请求
package handler

import (
	"educhat_server/internal/dto/request"
	"educhat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// OpenConversationHandler 打开（或创建）与某用户的私聊会话
// POST /conversation/open
func OpenConversationHandler(c *gin.Context) {
	var req request.OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	conv, err := service.Svc.Conversation.GetOrCreate(CurrentUserId(c), req.PeerId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"uuid":    conv.Uuid,
		"peer_id": conv.OtherOf(CurrentUserId(c)),
	})
}

// GetConversationListHandler 获取自己参与的会话列表
// GET /conversation/list
func GetConversationListHandler(c *gin.Context) {
	data, err := service.Svc.Conversation.ListForUser(CurrentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
