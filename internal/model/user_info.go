// Package model 定义数据库实体模型
// 本文件定义用户信息模型
// 用户表与平台 CRUD 侧共享，聊天服务只读取展示字段；
// 在线状态是派生值（活跃连接数>0），绝不落库
package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型，对应数据库 user_info 表
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识，格式：U + 19位字符
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`

	// Nickname 用户昵称
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`

	// Email 邮箱地址
	Email string `gorm:"column:email;type:char(30);comment:邮箱"`

	// Avatar 用户头像 URL
	Avatar string `gorm:"column:avatar;type:char(255);comment:头像"`

	// Password 密码（bcrypt 哈希，登录验证由平台认证服务处理）
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// LastOnlineAt 上次上线时间
	LastOnlineAt sql.NullTime `gorm:"column:last_online_at;type:datetime;comment:上次上线时间"`

	// LastOfflineAt 最近离线时间
	LastOfflineAt sql.NullTime `gorm:"column:last_offline_at;type:datetime;comment:最近离线时间"`

	// Status 账号状态，0=正常, 1=禁用
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.正常，1.禁用"`

	// RawPassword 明文密码（不存入数据库），在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave GORM Hook：将 RawPassword 明文密码加密后存入 Password 字段
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验密码是否正确
func (u *UserInfo) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
