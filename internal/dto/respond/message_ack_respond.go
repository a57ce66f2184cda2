package respond

// MessageAckRespond 消息确认响应 (message_ack 帧)
// Duplicate 为 true 表示命中去重窗口，返回的是首次入库的消息ID
// 使用位置:
//   - internal/service/chat/router.go: handleSendMessage
type MessageAckRespond struct {
	ClientNonce string `json:"client_nonce"`
	MessageUuid int64  `json:"message_uuid,string"`
	Duplicate   bool   `json:"duplicate,omitempty"`
}
