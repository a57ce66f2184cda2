// Package room_role_enum 聊天室成员角色枚举
package room_role_enum

// 成员角色
// 1=普通成员 2=管理员 3=创建者(不可被降级)
const (
	Member int8 = iota + 1
	Admin
	Creator
)
