package respond

// MessageRespond 消息下发/历史记录响应
// 使用位置:
//   - internal/service/chat/router.go: handleSendMessage (new_message 帧)
//   - internal/service/message/message_service.go: GetMessageList
type MessageRespond struct {
	Uuid        int64    `json:"uuid,string"`
	TargetType  string   `json:"target_type"`
	TargetId    string   `json:"target_id"`
	SendId      string   `json:"send_id"`
	SendName    string   `json:"send_name"`
	SendAvatar  string   `json:"send_avatar"`
	Type        int8     `json:"type"`
	Content     string   `json:"content"`
	ClientNonce string   `json:"client_nonce,omitempty"`
	ReadBy      []string `json:"read_by,omitempty"`
	CreatedAt   string   `json:"created_at"`
}
