package respond

// TypingRespond 输入状态响应 (user_typing / user_stop_typing 帧)
// 使用位置:
//   - internal/service/chat/router.go: handleTyping
type TypingRespond struct {
	UserUuid   string `json:"user_uuid"`
	TargetType string `json:"target_type"`
	TargetId   string `json:"target_id"`
}
