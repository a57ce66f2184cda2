// Package notification_kind_enum 通知类型枚举
package notification_kind_enum

// 通知类型，同时用作 WebSocket 下行事件名
const (
	FriendRequest  = "friend_request"
	FriendAccepted = "friend_accepted"
	FriendDeclined = "friend_declined"
	NewMessage     = "new_message_offline"
)
