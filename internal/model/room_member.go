package model

import "gorm.io/gorm"

// RoomMember 聊天室成员关联表
// (room_uuid, user_uuid) 复合唯一；成员记录的存在即聊天室操作的唯一授权来源
type RoomMember struct {
	gorm.Model
	RoomUuid string `gorm:"type:char(20);uniqueIndex:idx_room_user;not null;comment:聊天室ID"`
	UserUuid string `gorm:"type:char(20);uniqueIndex:idx_room_user;index;not null;comment:用户ID"`
	Role     int8   `gorm:"default:1;comment:1普通成员 2管理员 3创建者"`
}

func (RoomMember) TableName() string {
	return "room_member"
}
