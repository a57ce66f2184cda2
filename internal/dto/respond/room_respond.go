package respond

// RoomRespond 房间信息响应
// 使用位置:
//   - internal/handler/room_handler.go: CreateRoomHandler / GetRoomListHandler
//   - internal/service/chat/router.go: handleJoinRoom (joined_room 帧)
type RoomRespond struct {
	Uuid          string `json:"uuid"`
	Name          string `json:"name"`
	Type          int8   `json:"type"`
	IsPublic      bool   `json:"is_public"`
	CreatorId     string `json:"creator_id"`
	CourseUuid    string `json:"course_uuid,omitempty"`
	MemberCount   int    `json:"member_count,omitempty"`
	LastMessageId int64  `json:"last_message_id,string,omitempty"`
}
