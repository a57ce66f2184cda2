package repository

import (
	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知 Repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create 创建通知
func (r *notificationRepository) Create(n *model.Notification) error {
	if err := r.db.Create(n).Error; err != nil {
		return wrapDBError(err, "创建通知")
	}
	return nil
}

// FindUndelivered 查找用户未投递的通知
func (r *notificationRepository) FindUndelivered(recipientId string) ([]model.Notification, error) {
	var list []model.Notification
	if err := r.db.Where("recipient_id = ? AND delivered = 0", recipientId).
		Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询未投递通知 user=%s", recipientId)
	}
	return list, nil
}

// MarkDelivered 批量标记已投递
func (r *notificationRepository) MarkDelivered(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	if err := r.db.Model(&model.Notification{}).Where("uuid IN ?", uuids).
		Update("delivered", 1).Error; err != nil {
		return wrapDBError(err, "标记通知已投递")
	}
	return nil
}
