package router

import (
	"educhat_server/internal/handler"
	"educhat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes 注册聊天室路由
func RegisterRoomRoutes(r *gin.Engine) {
	group := r.Group("/room")
	group.Use(middleware.JWTAuth())
	{
		group.POST("/create", handler.CreateRoomHandler)
		group.POST("/join", handler.JoinRoomHandler)
		group.POST("/leave", handler.LeaveRoomHandler)
		group.POST("/member/add", handler.AddMemberHandler)
		group.POST("/member/remove", handler.RemoveMemberHandler)
		group.POST("/member/promote", handler.PromoteMemberHandler)
		group.POST("/member/demote", handler.DemoteMemberHandler)
		group.GET("/list", handler.GetRoomListHandler)
		group.GET("/info", handler.GetRoomHandler)
		group.GET("/members", handler.GetRoomMembersHandler)
	}
}
