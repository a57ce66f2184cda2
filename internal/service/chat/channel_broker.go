// Package chat 实现聊天系统的核心服务层
// channel_broker.go
// 核心职责：单机模式消息代理
// 发布进内存通道，单协程消费后送入目标串行队列，
// 单消费者保证发布顺序与入队顺序一致
package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"educhat_server/internal/dto/respond"
	"educhat_server/pkg/constants"
	"educhat_server/pkg/errorx"
)

// ChannelBroker 基于内存通道的消息代理
type ChannelBroker struct {
	hub       *Hub
	transmit  chan *TransmitEnvelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelBroker 创建单机消息代理
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:      hub,
		transmit: make(chan *TransmitEnvelope, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Publish 发布一条待投递消息
// 通道满时返回繁忙错误，调用方向发送方回错误帧
func (b *ChannelBroker) Publish(_ context.Context, env *TransmitEnvelope) error {
	select {
	case b.transmit <- env:
		return nil
	default:
		return errorx.ErrServerBusy
	}
}

// Start 启动消费循环
func (b *ChannelBroker) Start() {
	go b.consume()
	zap.L().Info("channel broker started")
}

// consume 单消费者循环：出通道 -> 入目标队列
func (b *ChannelBroker) consume() {
	for {
		select {
		case env := <-b.transmit:
			if err := b.hub.Enqueue(env); err != nil {
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
		case <-b.done:
			return
		}
	}
}

// Close 关闭代理
func (b *ChannelBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}
