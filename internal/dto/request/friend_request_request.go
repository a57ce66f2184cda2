package request

// FriendRequestRequest 发起好友申请请求
// 使用位置:
//   - internal/handler/friendship_handler.go: SendFriendRequestHandler
type FriendRequestRequest struct {
	AddresseeId string `json:"addressee_id" binding:"required"`
	Message     string `json:"message" binding:"max=255"`
}
