// Package message_type_enum 消息类型枚举
package message_type_enum

// 消息类型
// 0=文本, 1=图片, 2=文件, 3=系统消息
const (
	Text int8 = iota
	Image
	File
	System
)
