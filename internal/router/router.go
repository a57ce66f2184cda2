// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用，按模块分别注册各个路由组
func RegisterRoutes(r *gin.Engine) {
	RegisterFriendshipRoutes(r)   // 好友关系路由
	RegisterRoomRoutes(r)         // 聊天室路由
	RegisterConversationRoutes(r) // 私聊会话路由
	RegisterMessageRoutes(r)      // 历史消息路由
	RegisterNotificationRoutes(r) // 离线通知路由
	RegisterWebSocketRoutes(r)    // WebSocket 路由
}
