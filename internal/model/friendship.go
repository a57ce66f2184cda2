// Package model 定义数据库实体模型
// 本文件定义好友关系模型，私聊的唯一授权来源
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Friendship 好友关系模型，对应数据库 friendship 表
// 无序用户对唯一：(requester, addressee) 与 (addressee, requester) 视为同一关系，
// 存储时按字典序归一化到 UserOneId < UserTwoId，RequesterId 记录发起方
type Friendship struct {
	gorm.Model

	// Uuid 关系唯一标识，格式：F + 19位字符
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:关系id"`

	// UserOneId 无序对中字典序较小的用户
	UserOneId string `gorm:"column:user_one_id;uniqueIndex:idx_pair;type:char(20);not null;comment:用户对(小)"`

	// UserTwoId 无序对中字典序较大的用户
	UserTwoId string `gorm:"column:user_two_id;uniqueIndex:idx_pair;type:char(20);not null;comment:用户对(大)"`

	// RequesterId 发起方，只有 addressee 可以响应申请
	RequesterId string `gorm:"column:requester_id;index;type:char(20);not null;comment:申请人ID"`

	// Status 关系状态，0.申请中 1.已接受 2.已拒绝 3.已拉黑
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.申请中，1.已接受，2.已拒绝，3.已拉黑"`

	// BlockerId 执行拉黑的一方，仅 Status=Blocked 时有值；解除拉黑只能由该方发起
	BlockerId string `gorm:"column:blocker_id;type:char(20);comment:拉黑方ID"`

	// Message 申请附言
	Message string `gorm:"column:message;type:varchar(100);comment:申请信息"`

	// RespondedAt 响应时间（接受/拒绝/拉黑）
	RespondedAt sql.NullTime `gorm:"column:responded_at;type:datetime;comment:响应时间"`
}

// TableName 指定表名
func (Friendship) TableName() string {
	return "friendship"
}

// AddresseeId 返回被申请方
func (f *Friendship) AddresseeId() string {
	if f.RequesterId == f.UserOneId {
		return f.UserTwoId
	}
	return f.UserOneId
}

// OtherOf 返回关系中 userId 的对端
func (f *Friendship) OtherOf(userId string) string {
	if userId == f.UserOneId {
		return f.UserTwoId
	}
	return f.UserOneId
}

// Involves 判断 userId 是否属于该关系
func (f *Friendship) Involves(userId string) bool {
	return userId == f.UserOneId || userId == f.UserTwoId
}
