package request

// GetMessageListRequest 获取历史消息请求
// 使用位置:
//   - internal/handler/message_handler.go: GetMessageListHandler
type GetMessageListRequest struct {
	TargetType string `json:"target_type" form:"target_type" binding:"required,oneof=room conversation"`
	TargetId   string `json:"target_id" form:"target_id" binding:"required"`
	Before     int64  `json:"before,string" form:"before"`
	Limit      int    `json:"limit" form:"limit"`
}
