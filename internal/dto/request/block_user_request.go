package request

// BlockUserRequest 拉黑/解除拉黑用户请求
// 使用位置:
//   - internal/handler/friendship_handler.go: BlockUserHandler
//   - internal/handler/friendship_handler.go: UnblockUserHandler
type BlockUserRequest struct {
	TargetId string `json:"target_id" binding:"required"`
}
