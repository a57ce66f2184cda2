// Package chat 实现聊天系统的核心服务层
// kafka_client.go
// 核心职责：Kafka 基础设施管理
// 封装底层 Writer/Reader 的创建与关闭，纯技术组件不含业务逻辑
package chat

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	myconfig "educhat_server/internal/config"
)

// KafkaClient Kafka 客户端结构
type KafkaClient struct {
	Producer *kafka.Writer
	Consumer *kafka.Reader
}

// NewKafkaClient 创建 Kafka 客户端实例
func NewKafkaClient() *KafkaClient {
	return &KafkaClient{}
}

// KafkaInit 初始化生产者与消费者
// 生产者使用 Hash 均衡器：同一目标的消息固定落同一分区，
// 分区内有序是跨实例 FIFO 的基础
func (k *KafkaClient) KafkaInit() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig
	k.Producer = &kafka.Writer{
		Addr:                   kafka.TCP(kafkaConfig.HostPort),
		Topic:                  kafkaConfig.ChatTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaConfig.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	k.Consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{kafkaConfig.HostPort},
		Topic:          kafkaConfig.ChatTopic,
		CommitInterval: kafkaConfig.Timeout * time.Second,
		GroupID:        "educhat",
		StartOffset:    kafka.LastOffset,
	})
}

// KafkaClose 关闭 Kafka 资源
func (k *KafkaClient) KafkaClose() {
	if k.Producer != nil {
		if err := k.Producer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
	if k.Consumer != nil {
		if err := k.Consumer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
}

// SendMessage 写入一条消息，key 决定分区
func (k *KafkaClient) SendMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}
