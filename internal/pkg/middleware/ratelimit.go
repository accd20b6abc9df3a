package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// IPRateLimiter 存储每个IP的限流器
type IPRateLimiter struct {
	ips map[string]*ipEntry
	mu  sync.Mutex
	r   rate.Limit
	b   int
	ttl time.Duration
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter 创建一个新的IP限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   r,
		b:   b,
		ttl: 10 * time.Minute,
	}
}

// GetLimiter 获取指定IP的限流器，顺带清理长时间未出现的IP
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	entry, exists := i.ips[ip]
	if !exists {
		if len(i.ips) > 10000 {
			i.evict(now)
		}
		entry = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (i *IPRateLimiter) evict(now time.Time) {
	for ip, e := range i.ips {
		if now.Sub(e.lastSeen) > i.ttl {
			delete(i.ips, ip)
		}
	}
}

// RateLimitMiddleware 按IP限流
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Abort(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

// RateAllower redis_rate.Limiter 的子集
type RateAllower interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// PlayRateLimitMiddleware 按用户限制抽奖请求频率，匿名请求不计数。
// limiter 为空或 Redis 不可用时放行，资格判定仍由数据库保证。
func PlayRateLimitMiddleware(limiter RateAllower, perMinute int, log *zap.Logger) gin.HandlerFunc {
	limit := redis_rate.PerMinute(perMinute)
	return func(c *gin.Context) {
		userID := CurrentUserID(c)
		if limiter == nil || userID == "" || perMinute <= 0 {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), "play:"+userID, limit)
		if err != nil {
			log.Warn("play rate limiter unavailable", zap.String("user_id", userID), zap.Error(err))
			c.Next()
			return
		}
		if res.Allowed == 0 {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			response.Abort(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many play requests")
			return
		}
		c.Next()
	}
}
