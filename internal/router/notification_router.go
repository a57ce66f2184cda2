package router

import (
	"educhat_server/internal/handler"
	"educhat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes 注册离线通知路由
func RegisterNotificationRoutes(r *gin.Engine) {
	group := r.Group("/notification")
	group.Use(middleware.JWTAuth())
	{
		group.GET("/pull", handler.GetNotificationListHandler)
	}
}
