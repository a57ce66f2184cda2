package request

// CancelFriendRequestRequest 撤回好友申请请求
// 使用位置:
//   - internal/handler/friendship_handler.go: CancelFriendRequestHandler
type CancelFriendRequestRequest struct {
	AddresseeId string `json:"addressee_id" binding:"required"`
}
