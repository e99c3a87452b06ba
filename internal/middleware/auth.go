package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warehouse-manager/internal/logger"
	"warehouse-manager/pkg/security"
	"warehouse-manager/pkg/utils"
)

const (
	UserIDKey   = "userID"
	UsernameKey = "username"
	EmailKey    = "email"
)

// TokenVerifier is satisfied by *security.TokenManager.
type TokenVerifier interface {
	Verify(raw, expectedKind string) (*security.Claims, error)
}

// AuthMiddleware accepts an access token from the access cookie, falling back
// to an Authorization: Bearer header. A cookie that fails verification does
// not hide a valid header.
func AuthMiddleware(tokens TokenVerifier, accessCookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(accessCookie)
		candidates := []string{cookie, BearerToken(c)}

		var (
			claims *security.Claims
			err    error
			seen   bool
		)
		for _, token := range candidates {
			if token == "" {
				continue
			}
			seen = true
			if claims, err = tokens.Verify(token, security.KindAccess); err == nil {
				break
			}
		}
		if !seen {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if err != nil {
			logger.WithRequestID(GetRequestID(c)).Debug("Access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UsernameKey, claims.Username)
		c.Set(EmailKey, claims.Email)

		c.Next()
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID returns the authenticated user's id set by AuthMiddleware.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
