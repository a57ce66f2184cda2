package respond

// ConversationRespond 私聊会话响应
// 使用位置:
//   - internal/handler/conversation_handler.go: OpenConversationHandler / GetConversationListHandler
type ConversationRespond struct {
	Uuid           string `json:"uuid"`
	PeerId         string `json:"peer_id"`
	PeerNickname   string `json:"peer_nickname,omitempty"`
	PeerAvatar     string `json:"peer_avatar,omitempty"`
	LastMessageId  int64  `json:"last_message_id,string,omitempty"`
	LastActivityAt string `json:"last_activity_at,omitempty"`
}
