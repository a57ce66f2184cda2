package request

// LeaveRoomRequest 离开房间帧 (WebSocket leave_room)
// 使用位置:
//   - internal/service/chat/router.go: handleLeaveRoom
type LeaveRoomRequest struct {
	RoomUuid string `json:"room_uuid" binding:"required"`
}
