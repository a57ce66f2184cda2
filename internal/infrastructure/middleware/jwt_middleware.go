package middleware

import (
	"net/http"
	"strings"

	"educhat_server/pkg/errorx"
	"educhat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// JWTAuth JWT 认证中间件
// 验证平台签发的 Access Token 并将用户ID存入上下文。
// WebSocket 握手允许 Token 走 ?token= 查询参数（浏览器 WebSocket 不能带 Header）
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请先登录",
			})
			return
		}

		claims, err := jwt.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Token 已过期或无效，请重新登录",
			})
			return
		}
		if claims.Subject != "access_token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请使用 Access Token 访问此接口",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// extractToken 依次尝试 Authorization Header 和 token 查询参数
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
