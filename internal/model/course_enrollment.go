package model

import "gorm.io/gorm"

// CourseEnrollment 选课记录
// 表由平台 CRUD 侧维护，聊天服务只做只读的选课检查，
// 用于课程聊天室的加入授权
type CourseEnrollment struct {
	gorm.Model
	UserUuid   string `gorm:"type:char(20);uniqueIndex:idx_user_course;not null;comment:用户ID"`
	CourseUuid string `gorm:"type:char(20);uniqueIndex:idx_user_course;not null;comment:课程ID"`
	Status     int8   `gorm:"default:0;comment:0.有效，1.已退课"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollment"
}
