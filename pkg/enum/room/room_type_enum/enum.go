// Package room_type_enum 聊天室类型枚举
package room_type_enum

// 聊天室类型
// 0=全局大厅(所有认证用户可进), 1=自建群组, 2=课程聊天室(需选课)
const (
	Global int8 = iota
	Group
	Course
)
