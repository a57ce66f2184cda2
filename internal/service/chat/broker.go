// Package chat 实现聊天系统的核心服务层
// broker.go
// 核心职责：消息代理接口与投递信封定义
// 代理只负责把已授权的消息送进按目标串行的分发队列，
// 单机部署走 ChannelBroker，多实例部署走 KafkaBroker
package chat

import "context"

// TransmitEnvelope 投递信封
// 发送方连接的读协程完成校验和授权后封装，经代理进入目标队列；
// TargetId 在封装前已解析为聊天室或会话的最终 uuid
type TransmitEnvelope struct {
	ConnId       string `json:"conn_id"`
	SenderId     string `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar"`
	TargetType   string `json:"target_type"`
	TargetId     string `json:"target_id"`
	Type         int8   `json:"type"`
	Content      string `json:"content"`
	ClientNonce  string `json:"client_nonce"`
}

// MessageBroker 消息代理接口
// 两种实现：ChannelBroker (单机内存通道)、KafkaBroker (分布式)
type MessageBroker interface {
	// Publish 发布一条待投递消息
	Publish(ctx context.Context, env *TransmitEnvelope) error
	// Start 启动消费循环
	Start()
	// Close 关闭代理资源
	Close()
}
