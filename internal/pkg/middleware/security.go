package middleware

import (
	"fmt"
	"net/http"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

var securityHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
}

// SecurityHeadersMiddleware 安全响应头
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for key, value := range securityHeaders {
			c.Header(key, value)
		}
		c.Next()
	}
}

// BodyLimitMiddleware 请求体大小限制
func BodyLimitMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			response.Abort(c, http.StatusRequestEntityTooLarge, response.ErrInvalidParam,
				fmt.Sprintf("request too large, maximum size is %d bytes", maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
