package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client with a token bucket each.
type RateLimiter struct {
	limiters sync.Map
	rate     int
	burst    int

	cleanupInterval time.Duration
	idleTimeout     time.Duration
}

type limiterEntry struct {
	limiter *rate.Limiter

	mu         sync.Mutex
	lastAccess time.Time
}

func (e *limiterEntry) touch(now time.Time) {
	e.mu.Lock()
	e.lastAccess = now
	e.mu.Unlock()
}

func (e *limiterEntry) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastAccess)
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the
// given burst. Idle client buckets are dropped until ctx is done.
func NewRateLimiter(ctx context.Context, requestsPerSecond, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:            requestsPerSecond,
		burst:           burst,
		cleanupInterval: 5 * time.Minute,
		idleTimeout:     10 * time.Minute,
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.limiters.Range(func(key, value interface{}) bool {
				if entry, ok := value.(*limiterEntry); ok && entry.idleSince(now) > rl.idleTimeout {
					rl.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	if val, ok := rl.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.touch(now)
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(rl.rate), rl.burst),
		lastAccess: now,
	}
	actual, _ := rl.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

// clientIdentifier keys the bucket on the authenticated account when the
// auth middleware ran first, else on the client IP.
func clientIdentifier(c *gin.Context) string {
	if v, ok := c.Get(constants.AccountAddressKey); ok {
		if addr, ok := v.(common.Address); ok {
			return "account:" + addr.Hex()
		}
	}
	if forwardedFor := c.GetHeader("X-Forwarded-For"); forwardedFor != "" {
		return "ip:" + forwardedFor
	}
	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = "unknown"
	}
	return "ip:" + clientIP
}

// Middleware returns the gin handler.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		clientID := clientIdentifier(c)
		limiter := rl.getLimiter(clientID)
		reset := fmt.Sprintf("%d", time.Now().Add(time.Second).Unix())

		if !limiter.Allow() {
			logger.ForComponent(logger.ComponentMiddleware).Warn("Rate limit exceeded",
				zap.String("client_id", clientID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.rate))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", reset)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": 1,
			})
			return
		}

		remaining := int(limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.rate))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", reset)
		c.Next()
	}
}
