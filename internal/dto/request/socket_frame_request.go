package request

import "encoding/json"

// SocketFrameRequest WebSocket 客户端帧信封
// 使用位置:
//   - internal/service/chat/conn.go: Read
//   - internal/service/chat/router.go: Dispatch
type SocketFrameRequest struct {
	Event string          `json:"event" binding:"required"`
	Data  json.RawMessage `json:"data"`
}
