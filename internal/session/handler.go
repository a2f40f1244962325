package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
)

// LoginRequestBody 是成员Code登录的请求体。
type LoginRequestBody struct {
	Code string `json:"code" binding:"required"`
}

// AdminLoginRequestBody 是管理员登录的请求体。
type AdminLoginRequestBody struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// MobileLoginRequestBody 是移动端配对码登录的请求体。
type MobileLoginRequestBody struct {
	PairingCode string `json:"pairingCode" binding:"required"`
}

// setSessionCookie 把签发的会话令牌写入浏览器cookie。
func setSessionCookie(c *gin.Context, tokenStr string) {
	maxAge := config.Cfg.Auth.SessionTTLHours * 3600
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tokenStr, maxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

func sessionResponse(s *Session) gin.H {
	return gin.H{
		"memberCode": s.MemberCode,
		"name":       s.Name,
		"isAdmin":    s.IsAdmin,
		"expiresAt":  s.ExpiresAt.Format(time.RFC3339),
	}
}

// LoginHandler 处理成员Code登录。
func LoginHandler(c *gin.Context) {
	var body LoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	tokenStr, s, err := LoginWithCode(body.Code)
	if err != nil {
		if errors.Is(err, ErrLoginFailed) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "登录失败"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录处理失败"})
		return
	}

	setSessionCookie(c, tokenStr)
	c.JSON(http.StatusOK, sessionResponse(s))
}

// AdminLoginHandler 处理管理员的ID+密码登录。
func AdminLoginHandler(c *gin.Context) {
	var body AdminLoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	tokenStr, s, err := LoginAdmin(body.ID, body.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "登录失败"})
		return
	}

	setSessionCookie(c, tokenStr)
	c.JSON(http.StatusOK, sessionResponse(s))
}

// MobileLoginHandler 用一次性配对码换取登录会话。
func MobileLoginHandler(c *gin.Context) {
	var body MobileLoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	tokenStr, s, err := RedeemPairingCode(body.PairingCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPairingCode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "配对码无效或已过期"})
		case errors.Is(err, ErrPairingUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "配对码服务暂时不可用"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登录处理失败"})
		}
		return
	}

	setSessionCookie(c, tokenStr)
	c.JSON(http.StatusOK, sessionResponse(s))
}

// PairingCodeHandler 为当前登录成员生成移动端配对码。
func PairingCodeHandler(c *gin.Context) {
	s, _ := CurrentSession(c)

	code, err := GeneratePairingCode(s.MemberCode)
	if err != nil {
		if errors.Is(err, ErrPairingUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "配对码服务暂时不可用"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成配对码失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pairingCode":  code,
		"expiresHours": config.Cfg.Auth.PairingCodeTTLHours,
	})
}

// LogoutHandler 吊销当前会话并清除cookie。
func LogoutHandler(c *gin.Context) {
	if s, ok := CurrentSession(c); ok {
		DestroySession(s)
	}
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// MeHandler 返回当前会话的身份信息。
func MeHandler(c *gin.Context) {
	s, ok := CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}
