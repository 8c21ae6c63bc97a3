package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"cocktail-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 閒置超過此時間的用戶端限流器會被清除
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 依用戶端 IP 的令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	lastScan time.Time
	now      func() time.Time
}

// NewRateLimiter 每個用戶端在 window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		now:     time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastScan) > limiterIdleTTL {
		for k, v := range rl.clients {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastScan = now
	}

	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// RateLimit 限流中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(requests, window)
	retryAfter := int(math.Ceil((window / time.Duration(requests)).Seconds()))

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: common.ErrTooManyRequests.Message,
			})
			return
		}

		c.Next()
	}
}
