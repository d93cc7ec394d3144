package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumedesk/internal/session"
)

const (
	sessionKey      = "session"
	sessionSavedKey = "sessionSaved"

	msgLoginRequired = "You must be logged in to access that page."
)

// LoadSession 为每个请求加载会话；处理函数未显式保存时在 Next 之后补存。
func LoadSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := manager.Load(c.Request.Context(), c.Request)
		c.Set(sessionKey, s)

		c.Next()

		if c.GetBool(sessionSavedKey) || c.Writer.Written() {
			return
		}
		if err := manager.Save(c.Request.Context(), c.Writer, s); err != nil {
			LoggerFromContext(c).Error("save session failed", slog.Any("error", err))
		}
	}
}

// SaveSession 在写响应之前持久化会话，Set-Cookie 必须先于响应体。
func SaveSession(c *gin.Context, manager *session.Manager) {
	if err := manager.Save(c.Request.Context(), c.Writer, Current(c)); err != nil {
		LoggerFromContext(c).Error("save session failed", slog.Any("error", err))
	}
	c.Set(sessionSavedKey, true)
}

// Current 返回当前请求的会话；未经过 LoadSession 时返回一个新的匿名会话。
func Current(c *gin.Context) *session.Session {
	if value, ok := c.Get(sessionKey); ok {
		if s, ok := value.(*session.Session); ok {
			return s
		}
	}
	s := session.New()
	c.Set(sessionKey, s)
	return s
}

// RequireSession 拦截匿名请求：写入提示并跳转登录页。
func RequireSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := Current(c)
		if s.SignedIn() {
			c.Next()
			return
		}
		s.AddFlash(session.FlashError, msgLoginRequired)
		SaveSession(c, manager)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// AnonymousOnly 让已登录用户跳过登录/注册页。
func AnonymousOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Current(c).SignedIn() {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}
