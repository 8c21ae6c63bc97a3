package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"cocktail-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplicator 拒絕時間窗內內容相同的重複 POST 請求
type Deduplicator struct {
	mu       sync.Mutex
	requests map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

// NewDeduplicator 創建請求去重器
func NewDeduplicator(window time.Duration) *Deduplicator {
	return &Deduplicator{
		requests: make(map[string]time.Time),
		window:   window,
		now:      time.Now,
	}
}

// seen 記錄指紋，時間窗內重複時回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, t := range d.requests {
		if now.Sub(t) > d.window {
			delete(d.requests, k)
		}
	}

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Handler 請求去重中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			fingerprint += ":" + hex.EncodeToString(hash[:])
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		if d.seen(fingerprint) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "重複的請求",
			})
			return
		}

		c.Next()
	}
}
