package respond

// RoomEventRespond 房间进出事件响应 (joined_room / left_room 帧)
// 使用位置:
//   - internal/service/chat/router.go: handleJoinRoom / handleLeaveRoom
type RoomEventRespond struct {
	RoomUuid string `json:"room_uuid"`
	Role     int8   `json:"role,omitempty"`
}
