package respond

// FriendshipRespond 好友关系响应
// 使用位置:
//   - internal/handler/friendship_handler.go: 各查询接口
//   - internal/service/notification/notification_service.go: 好友事件推送
type FriendshipRespond struct {
	Uuid        string `json:"uuid"`
	RequesterId string `json:"requester_id"`
	AddresseeId string `json:"addressee_id"`
	Status      int8   `json:"status"`
	Message     string `json:"message,omitempty"`
	RespondedAt string `json:"responded_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// FriendRespond 好友列表条目响应
// 使用位置:
//   - internal/handler/friendship_handler.go: GetFriendListHandler
type FriendRespond struct {
	UserUuid string `json:"user_uuid"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Online   bool   `json:"online"`
}
