package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warehouse-manager/internal/logger"
	appErrors "warehouse-manager/pkg/errors"
	"warehouse-manager/pkg/utils"
)

// AttemptLimiter is satisfied by the Redis-backed fixed-window counter.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

type attemptOptions struct {
	resetOnSuccess bool
}

type AttemptOption func(*attemptOptions)

// WithResetOnSuccess clears the counter once the handler answers 2xx,
// so a successful login does not count against the client.
func WithResetOnSuccess() AttemptOption {
	return func(o *attemptOptions) { o.resetOnSuccess = true }
}

// AttemptLimitMiddleware caps attempts per client IP for one endpoint.
// A limiter error lets the request through.
func AttemptLimitMiddleware(limiter AttemptLimiter, scope string, opts ...AttemptOption) gin.HandlerFunc {
	var o attemptOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		log := logger.WithRequestID(GetRequestID(c))

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("Attempt limiter unavailable, allowing request",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			log.Warn("Too many attempts",
				zap.String("scope", scope),
				zap.String("ip", c.ClientIP()),
				zap.Duration("retry_after", retryAfter),
				zap.String("event", "attempt_limit_exceeded"),
			)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			utils.ErrorResponseWithCode(c, http.StatusTooManyRequests, appErrors.CodeRateLimited, appErrors.ErrTooManyAttempts.Error())
			c.Abort()
			return
		}

		c.Next()

		if o.resetOnSuccess && c.Writer.Status() < http.StatusMultipleChoices {
			if err := limiter.Reset(c.Request.Context(), key); err != nil {
				log.Warn("Failed to reset attempt counter", zap.String("scope", scope), zap.Error(err))
			}
		}
	}
}
