package router

import (
	"educhat_server/internal/handler"
	"educhat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterFriendshipRoutes 注册好友关系路由
func RegisterFriendshipRoutes(r *gin.Engine) {
	group := r.Group("/friendship")
	group.Use(middleware.JWTAuth())
	{
		group.POST("/request", handler.SendFriendRequestHandler)
		group.POST("/respond", handler.RespondFriendRequestHandler)
		group.POST("/cancel", handler.CancelFriendRequestHandler)
		group.POST("/block", handler.BlockUserHandler)
		group.POST("/unblock", handler.UnblockUserHandler)
		group.GET("/list", handler.GetFriendListHandler)
		group.GET("/pending/incoming", handler.GetPendingIncomingHandler)
		group.GET("/pending/outgoing", handler.GetPendingOutgoingHandler)
	}
}
