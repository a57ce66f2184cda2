package request

// SendMessageRequest 发送消息帧 (WebSocket send_message)
// 使用位置:
//   - internal/service/chat/router.go: handleSendMessage
type SendMessageRequest struct {
	TargetType  string `json:"target_type" binding:"required,oneof=room conversation"`
	TargetId    string `json:"target_id" binding:"required"`
	Type        int8   `json:"type"`
	Content     string `json:"content" binding:"required,max=4096"`
	ClientNonce string `json:"client_nonce" binding:"required,max=64"`
}
