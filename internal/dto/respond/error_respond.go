package respond

// ErrorRespond 错误帧响应 (error 帧)
// 使用位置:
//   - internal/service/chat/router.go: pushError
type ErrorRespond struct {
	Code        int    `json:"code"`
	Msg         string `json:"msg"`
	ClientNonce string `json:"client_nonce,omitempty"`
}
