package request

// TypingRequest 输入状态帧 (WebSocket typing_start / typing_stop)
// 使用位置:
//   - internal/service/chat/router.go: handleTyping
type TypingRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=room conversation"`
	TargetId   string `json:"target_id" binding:"required"`
}
