package request

// RespondFriendRequest 响应好友申请请求（接受或拒绝）
// 使用位置:
//   - internal/handler/friendship_handler.go: RespondFriendRequestHandler
type RespondFriendRequest struct {
	RequesterId string `json:"requester_id" binding:"required"`
	Accept      *bool  `json:"accept" binding:"required"`
}
