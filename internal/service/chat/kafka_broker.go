// Package chat 实现聊天系统的核心服务层
// kafka_broker.go
// 核心职责：分布式模式消息代理
// 以目标ID为分区键写入 Kafka，单消费协程按分区顺序取出后
// 送入目标串行队列，保持与单机模式相同的 FIFO 语义
package chat

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"educhat_server/internal/dto/respond"
	"educhat_server/pkg/errorx"
)

// KafkaBroker 基于 Kafka 的消息代理
type KafkaBroker struct {
	hub       *Hub
	client    *KafkaClient
	done      chan struct{}
	closeOnce sync.Once
}

// NewKafkaBroker 创建分布式消息代理
func NewKafkaBroker(hub *Hub, client *KafkaClient) *KafkaBroker {
	return &KafkaBroker{
		hub:    hub,
		client: client,
		done:   make(chan struct{}),
	}
}

// Publish 以目标ID为分区键写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, env *TransmitEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.SendMessage(ctx, []byte(env.TargetId), raw)
}

// Start 启动消费循环
func (b *KafkaBroker) Start() {
	go b.consume()
	zap.L().Info("kafka broker started")
}

// consume 单消费协程：按分区顺序取出 -> 入目标队列
func (b *KafkaBroker) consume() {
	ctx := context.Background()
	for {
		select {
		case <-b.done:
			return
		default:
		}

		kafkaMsg, err := b.client.Consumer.ReadMessage(ctx)
		if err != nil {
			zap.L().Error("kafka read failed", zap.Error(err))
			select {
			case <-b.done:
				return
			default:
				continue
			}
		}

		var env TransmitEnvelope
		if err := json.Unmarshal(kafkaMsg.Value, &env); err != nil {
			zap.L().Error("unmarshal kafka envelope failed", zap.Error(err))
			continue
		}
		if err := b.hub.Enqueue(&env); err != nil {
			zap.L().Warn("target queue full, message rejected",
				zap.String("target", env.TargetId), zap.String("sender", env.SenderId))
			b.hub.PushToConn(env.ConnId, respond.SocketFrameRespond{
				Event: EventError,
				Data: respond.ErrorRespond{
					Code:        errorx.GetCode(err),
					Msg:         err.Error(),
					ClientNonce: env.ClientNonce,
				},
			})
		}
	}
}

// Close 关闭代理
func (b *KafkaBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}
