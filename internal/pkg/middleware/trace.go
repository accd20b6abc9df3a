package middleware

import (
	"regexp"
	"strings"
	"voucher_wheel/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextTraceID = "traceID"

	traceHeader   = "X-Trace-ID"
	maxTraceIDLen = 64
)

var (
	traceIDPattern     = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	traceparentPattern = regexp.MustCompile(`^[0-9a-f]{2}-([0-9a-f]{32})-[0-9a-f]{16}-[0-9a-f]{2}$`)
)

// TraceMiddleware 确定请求追踪ID并写入 gin 与 request context
// 优先 X-Trace-ID，其次 W3C traceparent，都不可用时生成新的
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := resolveTraceID(c.GetHeader(traceHeader), c.GetHeader("traceparent"))

		c.Set(ContextTraceID, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header(traceHeader, traceID)
		c.Next()
	}
}

// resolveTraceID 客户端传入的值会进入日志，不合规的丢弃
func resolveTraceID(header, traceparent string) string {
	header = strings.TrimSpace(header)
	if header != "" && len(header) <= maxTraceIDLen && traceIDPattern.MatchString(header) {
		return header
	}
	if m := traceparentPattern.FindStringSubmatch(strings.TrimSpace(traceparent)); m != nil && m[1] != strings.Repeat("0", 32) {
		return m[1]
	}
	return uuid.New().String()
}
