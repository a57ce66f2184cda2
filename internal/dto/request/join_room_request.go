package request

// JoinRoomRequest 加入房间帧 (WebSocket join_room)
// 使用位置:
//   - internal/service/chat/router.go: handleJoinRoom
type JoinRoomRequest struct {
	RoomUuid string `json:"room_uuid" binding:"required"`
}
