package model

import (
	"gorm.io/gorm"
)

// ChatRoom 聊天室模型
// type: 0=全局大厅, 1=自建群组, 2=课程聊天室
// 全局和课程聊天室由平台侧预置，终端用户只能创建群组类型
type ChatRoom struct {
	gorm.Model
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:聊天室唯一id"`
	Name      string `gorm:"column:name;type:varchar(50);not null;comment:聊天室名称"`
	Type      int8   `gorm:"column:type;index;not null;comment:类型，0.全局，1.群组，2.课程"`
	IsPublic  int8   `gorm:"column:is_public;default:1;comment:是否公开，0.私有(仅邀请)，1.公开(可自助加入)"`
	CreatorId string `gorm:"column:creator_id;type:char(20);not null;comment:创建者uuid"`
	// CourseUuid 课程聊天室绑定的课程，仅 type=2 时有值，选课检查以此为准
	CourseUuid string `gorm:"column:course_uuid;index;type:char(20);comment:关联课程uuid"`
	// LastMessageId 最新消息雪花ID，用于聊天室列表摘要
	LastMessageId int64 `gorm:"column:last_message_id;comment:最新消息id"`
}

func (ChatRoom) TableName() string {
	return "chat_room"
}
