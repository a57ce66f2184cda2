package request

// MarkReadRequest 标记已读帧 (WebSocket mark_read)
// 使用位置:
//   - internal/service/chat/router.go: handleMarkRead
type MarkReadRequest struct {
	MessageUuid int64 `json:"message_uuid,string" binding:"required"`
}
