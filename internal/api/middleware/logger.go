package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"resumedesk/internal/session"
)

const slogLoggerKey = "slogLogger"

// SlogLoggerMiddleware 将 slog 集成到 Gin，并注入 Correlation ID。
// 请求结束时按状态码选择日志级别，已登录请求附带 user_id。
func SlogLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		requestLogger := logger.With(
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
		)
		c.Set(slogLoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}
		if value, ok := c.Get(sessionKey); ok {
			if s, ok := value.(*session.Session); ok && s.SignedIn() {
				attrs = append(attrs, slog.Uint64("user_id", uint64(s.Identity().UserID)))
			}
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			requestLogger.Error("request completed", attrs...)
		case status >= 400:
			requestLogger.Warn("request completed", attrs...)
		default:
			requestLogger.Info("request completed", attrs...)
		}
	}
}

// LoggerFromContext 返回上下文中的 slog.Logger。
func LoggerFromContext(c *gin.Context) *slog.Logger {
	if value, ok := c.Get(slogLoggerKey); ok {
		if logger, ok := value.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
