package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// sessionContextKey 是会话在gin.Context中的存放键。
const sessionContextKey = "currentSession"

// LoadSessionMiddleware 尝试从cookie中还原会话并放入请求上下文。
// 没有会话或会话无效都不拦截请求，由后续的Require中间件决定。
func LoadSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err == nil && tokenStr != "" {
			if s, ok := ValidateToken(tokenStr); ok {
				c.Set(sessionContextKey, s)
			}
		}
		c.Next()
	}
}

// RequireMemberMiddleware 拦截未登录的请求。
func RequireMemberMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.Next()
	}
}

// RequireAdminMiddleware 拦截非管理员的请求。
func RequireAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		if !s.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
			return
		}
		c.Next()
	}
}

// CurrentSession 从请求上下文中取出已验证的会话。
func CurrentSession(c *gin.Context) (*Session, bool) {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	s, ok := val.(*Session)
	return s, ok && s != nil
}
