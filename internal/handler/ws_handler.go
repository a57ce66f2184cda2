// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的请求
package handler

import (
	"net/http"

	"educhat_server/internal/service"
	"educhat_server/internal/service/chat"
	"educhat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsConnectHandler WebSocket 连接握手（升级 HTTP 连接为 WebSocket）
// GET /ws/connect
// 身份来自 JWT 中间件写入的上下文，而非查询参数：
// 握手即认证，无 Token 或 Token 无效的请求到不了这里
func WsConnectHandler(c *gin.Context) {
	userUuid := CurrentUserId(c)
	if userUuid == "" {
		zap.L().Error("ws connect without user identity")
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "请先登录",
		})
		return
	}
	chat.NewClientInit(c, userUuid, service.Svc.Chat)
}

// OnlineStatusHandler 查询一批用户的在线状态
// GET /ws/online?user_uuid=U1&user_uuid=U2
func OnlineStatusHandler(c *gin.Context) {
	userUuids := c.QueryArray("user_uuid")
	if len(userUuids) == 0 {
		HandleParamError(c, errorx.ErrInvalidParam)
		return
	}
	result := make(map[string]bool, len(userUuids))
	for _, uid := range userUuids {
		result[uid] = service.Svc.Presence.IsOnline(uid)
	}
	HandleSuccess(c, result)
}
