// Package target_type_enum 消息目标类型
package target_type_enum

// 一条消息只能指向一种目标：聊天室或私聊会话
const (
	Room         = "room"
	Conversation = "conversation"
)
