package repository

import (
	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建聊天室 Repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// FindByUuid 根据 UUID 查找聊天室
func (r *roomRepository) FindByUuid(uuid string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.Where("uuid = ?", uuid).First(&room).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室 uuid=%s", uuid)
	}
	return &room, nil
}

// FindByUuids 批量根据 UUID 查找聊天室
func (r *roomRepository) FindByUuids(uuids []string) ([]model.ChatRoom, error) {
	if len(uuids) == 0 {
		return []model.ChatRoom{}, nil
	}
	var rooms []model.ChatRoom
	if err := r.db.Where("uuid IN ?", uuids).Find(&rooms).Error; err != nil {
		return nil, wrapDBError(err, "批量查询聊天室")
	}
	return rooms, nil
}

// Create 创建聊天室
func (r *roomRepository) Create(room *model.ChatRoom) error {
	if err := r.db.Create(room).Error; err != nil {
		return wrapDBError(err, "创建聊天室")
	}
	return nil
}

// UpdateLastMessage 更新聊天室最新消息引用
func (r *roomRepository) UpdateLastMessage(uuid string, messageId int64) error {
	if err := r.db.Model(&model.ChatRoom{}).Where("uuid = ?", uuid).
		Update("last_message_id", messageId).Error; err != nil {
		return wrapDBErrorf(err, "更新聊天室最新消息 uuid=%s", uuid)
	}
	return nil
}
