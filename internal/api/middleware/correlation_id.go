package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	correlationIDKey    = "correlationID"
	correlationIDHeader = "X-Correlation-ID"
)

// CorrelationIDMiddleware 确保每个请求都带有 Correlation ID。
// 请求未携带时优先复用当前 span 的 trace id，便于日志与链路对齐。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationIDHeader))
		if id == "" {
			if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.HasTraceID() {
				id = spanCtx.TraceID().String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(correlationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	if value, ok := c.Get(correlationIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
