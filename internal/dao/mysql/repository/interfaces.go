// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"

	"educhat_server/internal/model"
	"educhat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// ErrRecordNotFound -> CodeNotFound，其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
// 用户的增删改由平台 CRUD 侧负责，聊天服务只读
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
}

// RoomRepository 聊天室数据访问接口
type RoomRepository interface {
	// FindByUuid 根据 UUID 查找聊天室
	FindByUuid(uuid string) (*model.ChatRoom, error)
	// FindByUuids 批量根据 UUID 查找聊天室
	FindByUuids(uuids []string) ([]model.ChatRoom, error)
	// Create 创建聊天室
	Create(room *model.ChatRoom) error
	// UpdateLastMessage 更新聊天室最新消息引用
	UpdateLastMessage(uuid string, messageId int64) error
}

// RoomMemberRepository 聊天室成员数据访问接口
// 成员记录是聊天室操作的唯一授权来源
type RoomMemberRepository interface {
	// Find 查找成员记录（授权检查入口）
	Find(roomUuid, userUuid string) (*model.RoomMember, error)
	// FindByRoomUuid 查找聊天室的所有成员
	FindByRoomUuid(roomUuid string) ([]model.RoomMember, error)
	// FindRoomUuidsByUser 查找用户加入的所有聊天室
	FindRoomUuidsByUser(userUuid string) ([]string, error)
	// Create 添加成员
	Create(member *model.RoomMember) error
	// UpdateRole 更新成员角色
	UpdateRole(roomUuid, userUuid string, role int8) error
	// Delete 移除成员（退出/被踢）
	Delete(roomUuid, userUuid string) error
}

// FriendshipRepository 好友关系数据访问接口
// 无序用户对唯一，查询前先归一化
type FriendshipRepository interface {
	// FindByPair 查找一对用户之间的关系（入参顺序无关）
	FindByPair(userOneId, userTwoId string) (*model.Friendship, error)
	// FindAcceptedByUser 查找用户的所有已接受关系
	FindAcceptedByUser(userId string) ([]model.Friendship, error)
	// FindPendingForAddressee 查找发给用户的待处理申请
	FindPendingForAddressee(userId string) ([]model.Friendship, error)
	// FindPendingForRequester 查找用户发出的待处理申请
	FindPendingForRequester(userId string) ([]model.Friendship, error)
	// Create 创建关系
	Create(f *model.Friendship) error
	// Update 更新关系
	Update(f *model.Friendship) error
	// Delete 硬删除关系（取消申请/解除拉黑回到 none 状态）
	Delete(f *model.Friendship) error
}

// ConversationRepository 私聊会话数据访问接口
type ConversationRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(uuid string) (*model.PrivateConversation, error)
	// FindByPair 查找一对用户之间的会话（入参顺序无关）
	FindByPair(oneId, twoId string) (*model.PrivateConversation, error)
	// FindByUser 查找用户参与的所有会话
	FindByUser(userId string) ([]model.PrivateConversation, error)
	// Create 创建会话
	Create(c *model.PrivateConversation) error
	// UpdateLastMessage 更新会话最新消息引用和活跃时间
	UpdateLastMessage(uuid string, messageId int64) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 持久化消息，失败视为临时性错误由调用方重试
	Create(m *model.Message) error
	// FindByUuid 根据雪花ID查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindByRoomUuid 拉取聊天室历史消息（按接受顺序，before 为分页游标）
	FindByRoomUuid(roomUuid string, before int64, limit int) ([]model.Message, error)
	// FindByConversationUuid 拉取会话历史消息（按接受顺序，before 为分页游标）
	FindByConversationUuid(conversationUuid string, before int64, limit int) ([]model.Message, error)
	// UpdateReadBy 更新消息已读集合（消息唯一可变字段）
	UpdateReadBy(uuid int64, readBy string) error
}

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	// Create 创建通知
	Create(n *model.Notification) error
	// FindUndelivered 查找用户未投递的通知
	FindUndelivered(recipientId string) ([]model.Notification, error)
	// MarkDelivered 批量标记已投递
	MarkDelivered(uuids []string) error
}

// EnrollmentRepository 选课检查接口（外部协作方的本地实现）
type EnrollmentRepository interface {
	// IsEnrolled 检查用户是否选修了课程
	IsEnrolled(userUuid, courseUuid string) (bool, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB
	User         UserRepository
	Room         RoomRepository
	RoomMember   RoomMemberRepository
	Friendship   FriendshipRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Notification NotificationRepository
	Enrollment   EnrollmentRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		User:         NewUserRepository(db),
		Room:         NewRoomRepository(db),
		RoomMember:   NewRoomMemberRepository(db),
		Friendship:   NewFriendshipRepository(db),
		Conversation: NewConversationRepository(db),
		Message:      NewMessageRepository(db),
		Notification: NewNotificationRepository(db),
		Enrollment:   NewEnrollmentRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
