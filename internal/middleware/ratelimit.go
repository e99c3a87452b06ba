package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"warehouse-manager/internal/logger"
	"warehouse-manager/pkg/utils"
)

const limiterSweepInterval = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter starts a sweeper that runs until ctx is cancelled.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}

	go rl.sweep(ctx)

	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = limiter
	}
	rl.mu.Unlock()

	return limiter.Allow()
}

// sweep drops buckets that have refilled completely, i.e. idle clients.
func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, limiter := range rl.limiters {
				if limiter.TokensAt(now) >= float64(rl.burst) {
					delete(rl.limiters, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiter.Allow(ip) {
			c.Next()
			return
		}

		logger.WithRequestID(GetRequestID(c)).Warn("Rate limit exceeded",
			zap.String("ip", ip),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		utils.AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	}
}
