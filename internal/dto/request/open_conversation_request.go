package request

// OpenConversationRequest 打开（或创建）私聊会话请求
// 使用位置:
//   - internal/handler/conversation_handler.go: OpenConversationHandler
type OpenConversationRequest struct {
	PeerId string `json:"peer_id" binding:"required"`
}
