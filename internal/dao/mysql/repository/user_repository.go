package repository

import (
	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 根据 UUID 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByUuids 批量根据 UUID 查找用户
func (r *userRepository) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	if len(uuids) == 0 {
		return []model.UserInfo{}, nil
	}
	var users []model.UserInfo
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}
