package router

import (
	"educhat_server/internal/handler"
	"educhat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册历史消息路由
func RegisterMessageRoutes(r *gin.Engine) {
	group := r.Group("/message")
	group.Use(middleware.JWTAuth())
	{
		group.GET("/list", handler.GetMessageListHandler)
	}
}
