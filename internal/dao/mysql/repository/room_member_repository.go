package repository

import (
	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type roomMemberRepository struct {
	db *gorm.DB
}

// NewRoomMemberRepository 创建聊天室成员 Repository
func NewRoomMemberRepository(db *gorm.DB) RoomMemberRepository {
	return &roomMemberRepository{db: db}
}

// Find 查找成员记录
func (r *roomMemberRepository) Find(roomUuid, userUuid string) (*model.RoomMember, error) {
	var member model.RoomMember
	if err := r.db.Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询成员 room=%s user=%s", roomUuid, userUuid)
	}
	return &member, nil
}

// FindByRoomUuid 查找聊天室的所有成员
func (r *roomMemberRepository) FindByRoomUuid(roomUuid string) ([]model.RoomMember, error) {
	var members []model.RoomMember
	if err := r.db.Where("room_uuid = ?", roomUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室成员列表 room=%s", roomUuid)
	}
	return members, nil
}

// FindRoomUuidsByUser 查找用户加入的所有聊天室
func (r *roomMemberRepository) FindRoomUuidsByUser(userUuid string) ([]string, error) {
	var roomUuids []string
	if err := r.db.Model(&model.RoomMember{}).Where("user_uuid = ?", userUuid).
		Pluck("room_uuid", &roomUuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户加入的聊天室 user=%s", userUuid)
	}
	return roomUuids, nil
}

// Create 添加成员
func (r *roomMemberRepository) Create(member *model.RoomMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBError(err, "添加聊天室成员")
	}
	return nil
}

// UpdateRole 更新成员角色
func (r *roomMemberRepository) UpdateRole(roomUuid, userUuid string, role int8) error {
	if err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).
		Update("role", role).Error; err != nil {
		return wrapDBErrorf(err, "更新成员角色 room=%s user=%s", roomUuid, userUuid)
	}
	return nil
}

// Delete 移除成员
func (r *roomMemberRepository) Delete(roomUuid, userUuid string) error {
	if err := r.db.Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).
		Delete(&model.RoomMember{}).Error; err != nil {
		return wrapDBErrorf(err, "移除成员 room=%s user=%s", roomUuid, userUuid)
	}
	return nil
}
