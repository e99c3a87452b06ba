package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warehouse-manager/pkg/utils"
)

// DefaultMaxRequestSize fits a detailed GeoJSON footprint.
const DefaultMaxRequestSize = 2 << 20

func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.AbortWithError(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}

		// chunked bodies have no ContentLength; the reader enforces the cap
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
