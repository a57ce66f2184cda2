// Package handler 提供 HTTP 请求处理器
// 本文件处理离线通知相关的 API 请求
package handler

import (
	"educhat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GetNotificationListHandler 拉取未投递的通知并标记已投递
// GET /notification/pull
// WebSocket 连接建立时会自动补发一次，这个接口给纯 HTTP 客户端兜底
func GetNotificationListHandler(c *gin.Context) {
	data, err := service.Svc.Notification.PullUndelivered(CurrentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
