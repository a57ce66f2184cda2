package request

// RoomMemberRequest 房间成员管理请求（添加/移除/升降权限）
// 使用位置:
//   - internal/handler/room_handler.go: AddMemberHandler
//   - internal/handler/room_handler.go: RemoveMemberHandler
//   - internal/handler/room_handler.go: PromoteMemberHandler
//   - internal/handler/room_handler.go: DemoteMemberHandler
type RoomMemberRequest struct {
	RoomUuid string `json:"room_uuid" binding:"required"`
	UserUuid string `json:"user_uuid" binding:"required"`
}
