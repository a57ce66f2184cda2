// Package handler 提供 HTTP 请求处理器
// 本文件处理历史消息相关的 API 请求
package handler

import (
	"educhat_server/internal/dto/request"
	"educhat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMessageListHandler 拉取聊天记录
// GET /message/list?target_type=room&target_id=xxx&before=0&limit=200
func GetMessageListHandler(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Message.GetMessageList(CurrentUserId(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
