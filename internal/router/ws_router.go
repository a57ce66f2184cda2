package router

import (
	"educhat_server/internal/handler"
	"educhat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 路由
// 握手同样走 JWT 中间件：无有效 Token 的连接在升级前就被拒绝
func RegisterWebSocketRoutes(r *gin.Engine) {
	group := r.Group("/ws")
	group.Use(middleware.JWTAuth())
	{
		group.GET("/connect", handler.WsConnectHandler)
		group.GET("/online", handler.OnlineStatusHandler)
	}
}
