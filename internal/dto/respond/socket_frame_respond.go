package respond

// SocketFrameRespond WebSocket 服务端帧信封
// 使用位置:
//   - internal/service/chat/hub.go: push
//   - internal/service/chat/router.go: 各事件处理函数
type SocketFrameRespond struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}
