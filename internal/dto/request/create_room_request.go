package request

// CreateRoomRequest 创建群聊房间请求
// 使用位置:
//   - internal/handler/room_handler.go: CreateRoomHandler
type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	IsPublic *bool  `json:"is_public" binding:"required"`
}
