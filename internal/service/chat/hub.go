// Package chat 实现聊天系统的核心服务层
// hub.go
// 核心职责：连接枢纽
// 1. 维护 connId -> UserConn 注册表，登录/登出走通道串行处理
// 2. 按目标(聊天室/会话)惰性创建串行分发协程，保证同目标消息 FIFO
// 3. 对外提供按用户/按连接的推送入口
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"educhat_server/internal/dto/respond"
	"educhat_server/internal/service/presence"
	"educhat_server/pkg/constants"
	"educhat_server/pkg/errorx"
)

// targetWorker 单目标串行分发协程
// 同一目标的消息只会被同一个协程按入队顺序处理
type targetWorker struct {
	queue      chan *TransmitEnvelope
	lastActive time.Time
	closed     bool
}

// Hub 连接枢纽
type Hub struct {
	// clients connId -> *UserConn
	clients sync.Map

	// Login/Logout 连接生命周期事件通道，由 run 协程串行消费
	Login  chan *UserConn
	Logout chan *UserConn

	presence *presence.Tracker

	// process 目标协程对每条消息执行的投递流水线，由路由器注入
	process func(env *TransmitEnvelope)

	workersMu sync.Mutex
	workers   map[string]*targetWorker

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub 创建连接枢纽
func NewHub(tracker *presence.Tracker) *Hub {
	return &Hub{
		Login:    make(chan *UserConn, constants.CHANNEL_SIZE),
		Logout:   make(chan *UserConn, constants.CHANNEL_SIZE),
		presence: tracker,
		workers:  make(map[string]*targetWorker),
		done:     make(chan struct{}),
	}
}

// SetProcessor 注入投递流水线
func (h *Hub) SetProcessor(fn func(env *TransmitEnvelope)) {
	h.process = fn
}

// Start 启动枢纽主循环
func (h *Hub) Start() {
	go h.run()
}

// run 串行处理登录/登出事件，定期回收空闲目标协程
func (h *Hub) run() {
	reaper := time.NewTicker(constants.TARGET_IDLE_TTL)
	defer reaper.Stop()

	for {
		select {
		case client := <-h.Login:
			h.clients.Store(client.ConnId, client)
			h.presence.AddConn(client.UserUuid, client.ConnId)
			zap.L().Info("client login",
				zap.String("user", client.UserUuid), zap.String("conn", client.ConnId))
		case client := <-h.Logout:
			h.clients.Delete(client.ConnId)
			h.presence.RemoveConn(client.UserUuid, client.ConnId)
			client.Close()
			zap.L().Info("client logout",
				zap.String("user", client.UserUuid), zap.String("conn", client.ConnId))
		case <-reaper.C:
			h.reapIdleWorkers()
		case <-h.done:
			return
		}
	}
}

// Close 停止枢纽并关闭所有目标协程
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.workersMu.Lock()
		for targetId, w := range h.workers {
			if !w.closed {
				w.closed = true
				close(w.queue)
			}
			delete(h.workers, targetId)
		}
		h.workersMu.Unlock()
	})
}

// Enqueue 将消息送入目标的串行队列
// 队列满时返回繁忙错误，调用方据此向发送方回错误帧
func (h *Hub) Enqueue(env *TransmitEnvelope) error {
	h.workersMu.Lock()
	defer h.workersMu.Unlock()

	w, ok := h.workers[env.TargetId]
	if !ok || w.closed {
		w = &targetWorker{
			queue: make(chan *TransmitEnvelope, constants.TARGET_QUEUE_SIZE),
		}
		h.workers[env.TargetId] = w
		go h.runWorker(env.TargetId, w)
	}
	w.lastActive = time.Now()

	select {
	case w.queue <- env:
		return nil
	default:
		return errorx.ErrServerBusy
	}
}

// runWorker 目标协程主循环，队列关闭即退出
func (h *Hub) runWorker(targetId string, w *targetWorker) {
	zap.L().Debug("target worker start", zap.String("target", targetId))
	for env := range w.queue {
		if h.process != nil {
			h.process(env)
		}
	}
	zap.L().Debug("target worker stop", zap.String("target", targetId))
}

// reapIdleWorkers 回收空闲超时且队列已排空的目标协程
func (h *Hub) reapIdleWorkers() {
	h.workersMu.Lock()
	defer h.workersMu.Unlock()
	for targetId, w := range h.workers {
		if !w.closed && len(w.queue) == 0 && time.Since(w.lastActive) > constants.TARGET_IDLE_TTL {
			w.closed = true
			close(w.queue)
			delete(h.workers, targetId)
		}
	}
}

// ==================== 推送 ====================

// PushToUser 向用户的所有活跃连接推送一帧
// 返回 false 表示用户当前没有任何活跃连接
func (h *Hub) PushToUser(userUuid string, frame respond.SocketFrameRespond) bool {
	raw, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("marshal push frame failed", zap.Error(err))
		return false
	}
	pushed := false
	for _, connId := range h.presence.ConnectionsOf(userUuid) {
		if h.pushRaw(connId, raw) {
			pushed = true
		}
	}
	return pushed
}

// PushToUsers 向一批用户推送同一帧（序列化只做一次）
func (h *Hub) PushToUsers(userUuids []string, frame respond.SocketFrameRespond) {
	raw, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("marshal push frame failed", zap.Error(err))
		return
	}
	for _, userUuid := range userUuids {
		for _, connId := range h.presence.ConnectionsOf(userUuid) {
			h.pushRaw(connId, raw)
		}
	}
}

// PushToConn 向指定连接推送一帧
func (h *Hub) PushToConn(connId string, frame respond.SocketFrameRespond) bool {
	raw, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("marshal push frame failed", zap.Error(err))
		return false
	}
	return h.pushRaw(connId, raw)
}

// pushRaw 向连接的发送缓冲投递原始字节
// 缓冲满说明对端消费过慢，丢帧并记日志，绝不阻塞投递协程
func (h *Hub) pushRaw(connId string, raw []byte) bool {
	value, ok := h.clients.Load(connId)
	if !ok {
		return false
	}
	client := value.(*UserConn)
	select {
	case client.SendBack <- raw:
		return true
	default:
		zap.L().Warn("conn send buffer full, frame dropped",
			zap.String("user", client.UserUuid), zap.String("conn", connId))
		return false
	}
}

// GetClient 获取指定连接
func (h *Hub) GetClient(connId string) *UserConn {
	if value, ok := h.clients.Load(connId); ok {
		return value.(*UserConn)
	}
	return nil
}
