package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/HabitForge/habitforge-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// AccountEmailKey 是已认证账户邮箱在Gin上下文中的键
	AccountEmailKey = "accountEmail"
)

// RequireAuthMiddleware 验证Authorization头中的会话令牌，
// 并把账户邮箱放入Gin上下文。令牌缺失或无效时直接以401终止请求。
func RequireAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenStr == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少会话令牌"})
			return
		}

		email, err := token.ParseSessionToken(tokenStr, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "会话无效或已过期"})
			return
		}

		c.Set(AccountEmailKey, email)
		c.Next()
	}
}

// CurrentEmail 从Gin上下文中取出已认证账户的邮箱。
func CurrentEmail(c *gin.Context) string {
	return c.GetString(AccountEmailKey)
}
