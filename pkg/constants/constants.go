package constants

import "time"

const (
	CHANNEL_SIZE      = 100 // 通道大小
	CONN_BUFFER_SIZE  = 64  // 单连接推送缓冲大小
	TARGET_QUEUE_SIZE = 256 // 单目标(聊天室/会话)消息队列大小

	REDIS_TIMEOUT = 1 // redis 缓存过期时间 (分钟)

	HEARTBEAT_WINDOW  = 60 * time.Second // 心跳窗口，超时视为断线
	PRESENCE_DEBOUNCE = 2 * time.Second  // 上下线事件防抖窗口
	DEDUP_WINDOW      = 30 * time.Second // 消息去重窗口(客户端重发)
	TARGET_IDLE_TTL   = 5 * time.Minute  // 目标分发协程空闲回收时间

	SAVE_RETRY_COUNT   = 3                      // 消息持久化重试次数
	SAVE_RETRY_BACKOFF = 100 * time.Millisecond // 重试退避基数

	HISTORY_PULL_LIMIT = 200 // 历史消息单次拉取上限
)
