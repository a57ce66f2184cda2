package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler HTTP 到 HTTPS 的重定向中间件
// 由 Nginx 终结 SSL 的部署无需启用
func TlsHandler(host string, port int) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求重复创建
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect: true,
		SSLHost:     host + ":" + strconv.Itoa(port),
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			// 中间件里绝不能 Fatal，记错误并终止当前请求即可
			zap.L().Error("TLS redirection failed", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
