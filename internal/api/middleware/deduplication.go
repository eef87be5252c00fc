package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-chat/internal/pkg/common"
)

// deduper 請求指紋表；同一指紋在視窗內只放行一次
type deduper struct {
	mu       sync.RWMutex
	requests map[string]time.Time
	window   time.Duration
	done     chan struct{}
}

func newDeduper(window time.Duration) *deduper {
	if window <= 0 {
		window = time.Second
	}
	d := &deduper{
		requests: make(map[string]time.Time),
		window:   window,
		done:     make(chan struct{}),
	}
	go d.startCleanup()
	return d
}

// stop 終止清理協程
func (d *deduper) stop() {
	close(d.done)
}

// startCleanup 週期性移除過期指紋
func (d *deduper) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			now := time.Now()
			d.mu.Lock()
			for k, t := range d.requests {
				if now.Sub(t) > 10*d.window {
					delete(d.requests, k)
				}
			}
			d.mu.Unlock()
		}
	}
}

// seen 檢查並記錄指紋
func (d *deduper) seen(fingerprint string) bool {
	now := time.Now()

	d.mu.RLock()
	last, exists := d.requests[fingerprint]
	d.mu.RUnlock()
	if exists && now.Sub(last) <= d.window {
		return true
	}

	d.mu.Lock()
	d.requests[fingerprint] = now
	d.mu.Unlock()
	return false
}

// Deduplication 請求去重中間件，擋掉視窗內完全相同的 POST
// （同路徑、同請求體），典型來源是前端連點送出
func Deduplication(window time.Duration) gin.HandlerFunc {
	d := newDeduper(window)

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != "POST" {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if d.seen(fingerprint) {
			c.JSON(429, gin.H{
				"error": "Request too frequent",
				"code":  common.ErrCodeTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
