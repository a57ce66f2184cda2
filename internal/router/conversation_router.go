package router

import (
	"educhat_server/internal/handler"
	"educhat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterConversationRoutes 注册私聊会话路由
func RegisterConversationRoutes(r *gin.Engine) {
	group := r.Group("/conversation")
	group.Use(middleware.JWTAuth())
	{
		group.POST("/open", handler.OpenConversationHandler)
		group.GET("/list", handler.GetConversationListHandler)
	}
}
