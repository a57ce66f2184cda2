// Package friendship_status_enum 好友关系状态枚举
package friendship_status_enum

// 好友关系状态机
// none -> pending(requester) -> {accepted, declined}; 任意状态 -> blocked
// none 状态即数据库中不存在记录
const (
	Pending  int8 = iota // 申请中，等待被申请人响应
	Accepted             // 已接受，解锁私聊与在线可见
	Declined             // 已拒绝，允许重新发起申请
	Blocked              // 已拉黑，私聊挂起，新申请不可见
)
