package repository

import (
	"educhat_server/internal/model"
	"educhat_server/pkg/enum/friendship/friendship_status_enum"

	"gorm.io/gorm"
)

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository 创建好友关系 Repository
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// normalizePair 将用户对归一化为字典序 (小, 大)
func normalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// FindByPair 查找一对用户之间的关系（入参顺序无关）
func (r *friendshipRepository) FindByPair(userOneId, userTwoId string) (*model.Friendship, error) {
	one, two := normalizePair(userOneId, userTwoId)
	var f model.Friendship
	if err := r.db.Where("user_one_id = ? AND user_two_id = ?", one, two).
		First(&f).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 %s-%s", one, two)
	}
	return &f, nil
}

// FindAcceptedByUser 查找用户的所有已接受关系
func (r *friendshipRepository) FindAcceptedByUser(userId string) ([]model.Friendship, error) {
	var list []model.Friendship
	if err := r.db.Where("(user_one_id = ? OR user_two_id = ?) AND status = ?",
		userId, userId, friendship_status_enum.Accepted).Find(&list).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 user=%s", userId)
	}
	return list, nil
}

// FindPendingForAddressee 查找发给用户的待处理申请
func (r *friendshipRepository) FindPendingForAddressee(userId string) ([]model.Friendship, error) {
	var list []model.Friendship
	if err := r.db.Where("(user_one_id = ? OR user_two_id = ?) AND requester_id <> ? AND status = ?",
		userId, userId, userId, friendship_status_enum.Pending).Find(&list).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待处理申请 user=%s", userId)
	}
	return list, nil
}

// FindPendingForRequester 查找用户发出的待处理申请
func (r *friendshipRepository) FindPendingForRequester(userId string) ([]model.Friendship, error) {
	var list []model.Friendship
	if err := r.db.Where("requester_id = ? AND status = ?",
		userId, friendship_status_enum.Pending).Find(&list).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询已发出申请 user=%s", userId)
	}
	return list, nil
}

// Create 创建关系
func (r *friendshipRepository) Create(f *model.Friendship) error {
	f.UserOneId, f.UserTwoId = normalizePair(f.UserOneId, f.UserTwoId)
	if err := r.db.Create(f).Error; err != nil {
		return wrapDBError(err, "创建好友关系")
	}
	return nil
}

// Update 更新关系
func (r *friendshipRepository) Update(f *model.Friendship) error {
	if err := r.db.Save(f).Error; err != nil {
		return wrapDBError(err, "更新好友关系")
	}
	return nil
}

// Delete 硬删除关系，回到 none 状态
// 无序对有唯一索引，软删除残留会挡住后续重新申请，所以用 Unscoped
func (r *friendshipRepository) Delete(f *model.Friendship) error {
	if err := r.db.Unscoped().Delete(f).Error; err != nil {
		return wrapDBError(err, "删除好友关系")
	}
	return nil
}
