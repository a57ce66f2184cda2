package model

import "gorm.io/gorm"

// Notification 通知模型
// 好友事件和发给离线成员的消息都会落一条通知；
// 接收方在线则即时推送并标记已投递，否则等下次登录拉取
type Notification struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:通知唯一id"`
	RecipientId string `gorm:"column:recipient_id;index;type:char(20);not null;comment:接收者uuid"`
	Kind        string `gorm:"column:kind;type:varchar(30);not null;comment:通知类型"`
	Payload     string `gorm:"column:payload;type:TEXT;comment:通知内容(JSON)"`
	Delivered   int8   `gorm:"column:delivered;index;default:0;comment:是否已投递，0.否，1.是"`
}

func (Notification) TableName() string {
	return "notification"
}
