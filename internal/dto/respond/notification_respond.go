package respond

import "encoding/json"

// NotificationRespond 通知响应 (notification 帧 / 离线通知拉取)
// 使用位置:
//   - internal/service/notification/notification_service.go: Notify / PullUndelivered
//   - internal/handler/notification_handler.go: GetNotificationListHandler
type NotificationRespond struct {
	Uuid      string          `json:"uuid"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
}
