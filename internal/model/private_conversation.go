package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// PrivateConversation 私聊会话模型
// 参与者按字典序归一化存储，Uuid 由有序对确定性派生，
// 重复解析同一用户对得到同一会话（见 service/conversation）
// 创建会话本身不授权发送，发送时由消息路由器查好友状态
type PrivateConversation struct {
	gorm.Model
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:会话唯一id"`

	// ParticipantOneId 字典序较小的参与者
	ParticipantOneId string `gorm:"column:participant_one_id;uniqueIndex:idx_participants;type:char(20);not null;comment:参与者(小)"`

	// ParticipantTwoId 字典序较大的参与者
	ParticipantTwoId string `gorm:"column:participant_two_id;uniqueIndex:idx_participants;type:char(20);not null;comment:参与者(大)"`

	// LastMessageId 最新消息雪花ID
	LastMessageId int64 `gorm:"column:last_message_id;comment:最新消息id"`

	// LastActivityAt 最近活跃时间，会话列表按此排序
	LastActivityAt sql.NullTime `gorm:"column:last_activity_at;type:datetime;comment:最近活跃时间"`
}

func (PrivateConversation) TableName() string {
	return "private_conversation"
}

// OtherOf 返回会话中 userId 的对端
func (c *PrivateConversation) OtherOf(userId string) string {
	if userId == c.ParticipantOneId {
		return c.ParticipantTwoId
	}
	return c.ParticipantOneId
}

// Involves 判断 userId 是否为会话参与者
func (c *PrivateConversation) Involves(userId string) bool {
	return userId == c.ParticipantOneId || userId == c.ParticipantTwoId
}
