package repository

import (
	"database/sql"
	"time"

	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建私聊会话 Repository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByUuid 根据 UUID 查找会话
func (r *conversationRepository) FindByUuid(uuid string) (*model.PrivateConversation, error) {
	var conv model.PrivateConversation
	if err := r.db.Where("uuid = ?", uuid).First(&conv).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &conv, nil
}

// FindByPair 查找一对用户之间的会话（入参顺序无关）
func (r *conversationRepository) FindByPair(oneId, twoId string) (*model.PrivateConversation, error) {
	one, two := normalizePair(oneId, twoId)
	var conv model.PrivateConversation
	if err := r.db.Where("participant_one_id = ? AND participant_two_id = ?", one, two).
		First(&conv).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 %s-%s", one, two)
	}
	return &conv, nil
}

// FindByUser 查找用户参与的所有会话
func (r *conversationRepository) FindByUser(userId string) ([]model.PrivateConversation, error) {
	var list []model.PrivateConversation
	if err := r.db.Where("participant_one_id = ? OR participant_two_id = ?", userId, userId).
		Order("last_activity_at DESC").Find(&list).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话列表 user=%s", userId)
	}
	return list, nil
}

// Create 创建会话
func (r *conversationRepository) Create(c *model.PrivateConversation) error {
	c.ParticipantOneId, c.ParticipantTwoId = normalizePair(c.ParticipantOneId, c.ParticipantTwoId)
	if err := r.db.Create(c).Error; err != nil {
		return wrapDBError(err, "创建会话")
	}
	return nil
}

// UpdateLastMessage 更新会话最新消息引用和活跃时间
func (r *conversationRepository) UpdateLastMessage(uuid string, messageId int64) error {
	updates := map[string]interface{}{
		"last_message_id":  messageId,
		"last_activity_at": sql.NullTime{Time: time.Now(), Valid: true},
	}
	if err := r.db.Model(&model.PrivateConversation{}).Where("uuid = ?", uuid).
		Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新会话最新消息 uuid=%s", uuid)
	}
	return nil
}
