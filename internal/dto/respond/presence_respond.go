package respond

// PresenceRespond 在线状态变更响应 (user_online / user_offline 帧)
// 使用位置:
//   - internal/service/chat/announcer.go: Announce
type PresenceRespond struct {
	UserUuid string `json:"user_uuid"`
	At       string `json:"at"`
}
