package repository

import (
	"errors"

	"educhat_server/internal/model"

	"gorm.io/gorm"
)

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository 创建选课检查 Repository
// 选课表由平台 CRUD 侧维护，这里只做只读检查
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// IsEnrolled 检查用户是否选修了课程
func (r *enrollmentRepository) IsEnrolled(userUuid, courseUuid string) (bool, error) {
	var enrollment model.CourseEnrollment
	err := r.db.Where("user_uuid = ? AND course_uuid = ? AND status = 0", userUuid, courseUuid).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, wrapDBErrorf(err, "查询选课记录 user=%s course=%s", userUuid, courseUuid)
	}
	return true, nil
}
