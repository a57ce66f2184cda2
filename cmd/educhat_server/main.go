package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"educhat_server/internal/config"
	dao "educhat_server/internal/dao/mysql"
	myredis "educhat_server/internal/dao/redis"
	"educhat_server/internal/handler"
	"educhat_server/internal/https_server"
	"educhat_server/internal/infrastructure/logger"
	"educhat_server/internal/service"
	"educhat_server/pkg/util/jwt"
	"educhat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花ID节点
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 4. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT（密钥与平台认证服务共享）
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 7. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 8. 初始化 Service 层 (依赖注入)
	service.InitServices(repos, myredis.GetCacheService())
	zap.L().Info("Service 层初始化成功")

	// 9. 启动聊天服务器（Kafka 模式先建连接）
	if conf.KafkaConfig.MessageMode == "kafka" {
		service.Svc.Chat.InitKafka()
	}
	service.Svc.Chat.Start()
	zap.L().Info("ChatServer 启动成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 10. 初始化并启动 HTTP 服务器
	engine := https_server.Init()
	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("HTTP 服务器启动成功")

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	service.Svc.Chat.Close()
	zap.L().Info("服务器已关闭")
}
