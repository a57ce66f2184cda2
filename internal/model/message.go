// Package model 定义数据库实体模型
// 本文件定义消息模型
package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Message 消息模型，对应数据库 message 表
// 一条消息只指向一个目标：RoomUuid 与 ConversationUuid 恰有一个非空。
// 消息创建后不可变，唯一例外是已读集合的更新
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识，雪花算法生成的 int64
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// RoomUuid 目标聊天室，与 ConversationUuid 互斥
	RoomUuid string `gorm:"column:room_uuid;index;type:char(20);comment:目标聊天室uuid"`

	// ConversationUuid 目标私聊会话，与 RoomUuid 互斥
	ConversationUuid string `gorm:"column:conversation_uuid;index;type:char(20);comment:目标会话uuid"`

	// SendId 发送者 UUID
	SendId string `gorm:"column:send_id;index;type:char(20);not null;comment:发送者uuid"`

	// SendName 发送者昵称，冗余存储避免查消息时关联用户表
	SendName string `gorm:"column:send_name;type:varchar(20);comment:发送者昵称"`

	// SendAvatar 发送者头像，冗余存储
	SendAvatar string `gorm:"column:send_avatar;type:varchar(255);comment:发送者头像"`

	// Type 消息类型，0.文本 1.图片 2.文件 3.系统
	Type int8 `gorm:"column:type;not null;comment:消息类型，0.文本，1.图片，2.文件，3.系统"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// ClientNonce 客户端提供的幂等键，配合去重窗口吸收重发
	ClientNonce string `gorm:"column:client_nonce;type:char(64);comment:客户端幂等键"`

	// ReadBy 已读用户集合，JSON 数组字符串
	ReadBy string `gorm:"column:read_by;type:TEXT;comment:已读用户集合"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}

// TargetId 返回消息目标（聊天室或会话，恰有其一）
func (m *Message) TargetId() string {
	if m.RoomUuid != "" {
		return m.RoomUuid
	}
	return m.ConversationUuid
}

// ReadBySet 解析已读集合
func (m *Message) ReadBySet() map[string]struct{} {
	set := make(map[string]struct{})
	if m.ReadBy == "" {
		return set
	}
	var list []string
	if err := json.Unmarshal([]byte(m.ReadBy), &list); err != nil {
		return set
	}
	for _, id := range list {
		set[id] = struct{}{}
	}
	return set
}

// AppendReadBy 向已读集合追加一个用户，返回是否发生变更
func (m *Message) AppendReadBy(userId string) bool {
	set := m.ReadBySet()
	if _, ok := set[userId]; ok {
		return false
	}
	list := make([]string, 0, len(set)+1)
	for id := range set {
		list = append(list, id)
	}
	list = append(list, userId)
	raw, err := json.Marshal(list)
	if err != nil {
		return false
	}
	m.ReadBy = string(raw)
	return true
}
