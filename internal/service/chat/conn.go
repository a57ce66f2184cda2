// Package chat 实现聊天系统的核心服务层
// conn.go
// 核心职责：WebSocket 连接生命周期
// 1. Upgrade 升级连接，封装 UserConn，启动读写协程
// 2. 读协程把客户端帧交给路由器，心跳窗口内无任何帧视为断线
// 3. 写协程消费发送缓冲，定期发 ping 探活
package chat

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"educhat_server/internal/dto/respond"
	"educhat_server/pkg/constants"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserConn 单条 WebSocket 连接
// 同一用户可以有多条连接（网页 + 手机），ConnId 全局唯一
type UserConn struct {
	Conn       *websocket.Conn
	ConnId     string
	UserUuid   string
	SendName   string // 发送者昵称，连接建立时冗余一份，发消息不再查库
	SendAvatar string

	// SendBack 发送缓冲，写协程消费
	// 永不关闭，连接终止通过 done 通知写协程退出，
	// 推送方因此不会撞上向已关闭通道发送
	SendBack chan []byte

	// done 连接终止信号
	done chan struct{}

	server    *ChatServer
	closeOnce sync.Once
}

// heartbeatWindow 本连接的心跳窗口
func (c *UserConn) heartbeatWindow() time.Duration {
	if c.server != nil && c.server.heartbeat > 0 {
		return c.server.heartbeat
	}
	return constants.HEARTBEAT_WINDOW
}

// pingInterval ping 间隔，必须小于心跳窗口
func (c *UserConn) pingInterval() time.Duration {
	return c.heartbeatWindow() * 2 / 5
}

// NewClientInit 升级 WebSocket 连接并注册到枢纽
// 鉴权已由 JWT 中间件完成，userUuid 来自令牌
func NewClientInit(c *gin.Context, userUuid string, server *ChatServer) {
	user, err := server.repos.User.FindByUuid(userUuid)
	if err != nil {
		zap.L().Error("ws connect user lookup failed", zap.String("user", userUuid), zap.Error(err))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade failed", zap.Error(err))
		return
	}

	client := &UserConn{
		Conn:       conn,
		ConnId:     uuid.NewString(),
		UserUuid:   userUuid,
		SendName:   user.Nickname,
		SendAvatar: user.Avatar,
		SendBack:   make(chan []byte, constants.CONN_BUFFER_SIZE),
		done:       make(chan struct{}),
		server:     server,
	}

	server.Hub.Login <- client
	go client.Read()
	go client.Write()

	server.Router.onConnected(client)
	zap.L().Info("ws连接成功", zap.String("user", userUuid), zap.String("conn", client.ConnId))
}

// Read 读协程
// 任何入站帧（含心跳帧和 pong）都会顺延读截止时间，
// 心跳窗口内毫无动静等价于断线，触发登出
func (c *UserConn) Read() {
	defer c.logout()

	window := c.heartbeatWindow()
	_ = c.Conn.SetReadDeadline(time.Now().Add(window))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(window))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			zap.L().Info("ws read stop",
				zap.String("user", c.UserUuid), zap.String("conn", c.ConnId), zap.Error(err))
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(window))
		c.server.Router.Dispatch(c, raw)
	}
}

// Write 写协程
// 收到终止信号后退出
func (c *UserConn) Write() {
	pinger := time.NewTicker(c.pingInterval())
	defer pinger.Stop()

	for {
		select {
		case <-c.done:
			return
		case raw := <-c.SendBack:
			if err := c.Conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				zap.L().Info("ws write stop",
					zap.String("user", c.UserUuid), zap.String("conn", c.ConnId), zap.Error(err))
				c.logout()
				return
			}
		case <-pinger.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logout()
				return
			}
		}
	}
}

// push 直接向本连接的发送缓冲投递一帧
// 登录事件是异步入枢纽的，连接建立初期的首发帧走这里而不经过注册表
func (c *UserConn) push(frame respond.SocketFrameRespond) {
	raw, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("marshal frame failed", zap.Error(err))
		return
	}
	select {
	case c.SendBack <- raw:
	default:
		zap.L().Warn("conn send buffer full, frame dropped",
			zap.String("user", c.UserUuid), zap.String("conn", c.ConnId))
	}
}

// logout 把连接送入登出通道，由枢纽串行处理
func (c *UserConn) logout() {
	c.server.Hub.Logout <- c
}

// Close 终止连接，幂等
// 只关 done 不关 SendBack：并发推送方可能仍握着本连接的引用
func (c *UserConn) Close() {
	c.closeOnce.Do(func() {
		if c.done != nil {
			close(c.done)
		}
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}
