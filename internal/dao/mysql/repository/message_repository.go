package repository

import (
	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 持久化消息
func (r *messageRepository) Create(m *model.Message) error {
	if err := r.db.Create(m).Error; err != nil {
		return wrapDBError(err, "持久化消息")
	}
	return nil
}

// FindByUuid 根据雪花ID查找消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var m model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&m).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &m, nil
}

// FindByRoomUuid 拉取聊天室历史消息
// before 为分页游标（雪花ID，0 表示从最新开始），返回按服务端接受顺序升序
func (r *messageRepository) FindByRoomUuid(roomUuid string, before int64, limit int) ([]model.Message, error) {
	list, err := r.findByTarget("room_uuid = ?", roomUuid, before, limit)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室历史消息 room=%s", roomUuid)
	}
	return list, nil
}

// FindByConversationUuid 拉取会话历史消息
func (r *messageRepository) FindByConversationUuid(conversationUuid string, before int64, limit int) ([]model.Message, error) {
	list, err := r.findByTarget("conversation_uuid = ?", conversationUuid, before, limit)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话历史消息 conversation=%s", conversationUuid)
	}
	return list, nil
}

// findByTarget 游标分页的公共实现
// 按雪花ID倒序取最近一页，再反转为升序返回
func (r *messageRepository) findByTarget(cond, targetId string, before int64, limit int) ([]model.Message, error) {
	query := r.db.Where(cond, targetId)
	if before > 0 {
		query = query.Where("uuid < ?", before)
	}
	var list []model.Message
	if err := query.Order("uuid DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// UpdateReadBy 更新消息已读集合
func (r *messageRepository) UpdateReadBy(uuid int64, readBy string) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Update("read_by", readBy).Error; err != nil {
		return wrapDBErrorf(err, "更新消息已读集合 uuid=%d", uuid)
	}
	return nil
}
