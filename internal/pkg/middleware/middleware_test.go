package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/logger"
	"voucher_wheel/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupJWT(t *testing.T) {
	t.Helper()
	prev := config.GlobalConfig.JWT
	config.GlobalConfig.JWT = config.JWTConfig{Secret: "test-secret-with-at-least-32-characters", Expire: 1}
	t.Cleanup(func() { config.GlobalConfig.JWT = prev })
}

func bearer(t *testing.T, userID string, role int) string {
	t.Helper()
	token, _, err := utils.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c)})
}

func serve(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	setupJWT(t)
	r := gin.New()
	r.GET("/", AuthMiddleware(), whoami)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer not-a-jwt").Code)

	w := serve(r, bearer(t, "user-1", utils.RoleUser))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"user-1"`)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	setupJWT(t)
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(), whoami)

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":""`)

	w = serve(r, bearer(t, "user-2", utils.RoleUser))
	assert.Contains(t, w.Body.String(), `"user":"user-2"`)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer broken").Code)
}

func TestAdminMiddleware(t *testing.T) {
	setupJWT(t)
	r := gin.New()
	r.GET("/", AuthMiddleware(), AdminMiddleware(), whoami)

	assert.Equal(t, http.StatusForbidden, serve(r, bearer(t, "user-1", utils.RoleUser)).Code)
	assert.Equal(t, http.StatusOK, serve(r, bearer(t, "admin-1", utils.RoleAdmin)).Code)
}

func TestTraceAndRequestIDHeaders(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(), LoggerMiddleware(zap.NewNop()))
	r.GET("/", whoami)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-123", w.Header().Get("X-Trace-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestTraceIDResolution(t *testing.T) {
	var fromCtx string
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) {
		fromCtx = logger.TraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name        string
		header      string
		traceparent string
		want        string
	}{
		{"valid header", "play-42", "", "play-42"},
		{"header wins over traceparent", "play-42", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", "play-42"},
		{"traceparent", "", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", "4bf92f3577b34da6a3ce929d0e0e4736"},
		{"header with newline", "abc\nforged=1", "", ""},
		{"header too long", strings.Repeat("a", 65), "", ""},
		{"zero traceparent", "", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Trace-ID", tt.header)
			}
			if tt.traceparent != "" {
				req.Header.Set("traceparent", tt.traceparent)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Trace-ID")
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err, "expected generated trace id, got %q", got)
			}
			assert.Equal(t, got, fromCtx)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(NewIPRateLimiter(1, 2)), whoami)

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)
}

type fakeAllower struct {
	allowed map[string]int
	err     error
}

func (f *fakeAllower) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.allowed[key]++
	if f.allowed[key] > limit.Burst {
		return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: time.Second}, nil
	}
	return &redis_rate.Result{Limit: limit, Allowed: 1}, nil
}

func TestPlayRateLimitMiddleware(t *testing.T) {
	setupJWT(t)
	allower := &fakeAllower{allowed: map[string]int{}}
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(), PlayRateLimitMiddleware(allower, 2, zap.NewNop()), whoami)

	token := bearer(t, "user-1", utils.RoleUser)
	assert.Equal(t, http.StatusOK, serve(r, token).Code)
	assert.Equal(t, http.StatusOK, serve(r, token).Code)
	w := serve(r, token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	// 匿名请求不经过 Redis
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, 3, allower.allowed["play:user-1"])
	assert.Len(t, allower.allowed, 1)
}

func TestPlayRateLimitFailsOpen(t *testing.T) {
	setupJWT(t)
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(), PlayRateLimitMiddleware(&fakeAllower{err: errors.New("redis down")}, 2, zap.NewNop()), whoami)

	assert.Equal(t, http.StatusOK, serve(r, bearer(t, "user-1", utils.RoleUser)).Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/", whoami)

	w := serve(r, "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestBodyLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/", BodyLimitMiddleware(8), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	ok := httptest.NewRecorder()
	r.ServeHTTP(ok, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("small")))
	assert.Equal(t, http.StatusNoContent, ok.Code)

	big := httptest.NewRecorder()
	r.ServeHTTP(big, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("much too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, big.Code)
}
