package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-manager/internal/infrastructure/cache/redis"
	"warehouse-manager/pkg/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *security.TokenManager {
	return security.NewTokenManager("secret", "warehouse-manager", time.Hour, 24*time.Hour)
}

func protectedRouter(tokens *security.TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/me", AuthMiddleware(tokens, "access_token_cookie"), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "username": c.GetString(UsernameKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	r := protectedRouter(tokens)

	access, _, err := tokens.IssueAccessToken(42, "alice", "a@x.com")
	require.NoError(t, err)
	refresh, _, err := tokens.IssueRefreshToken(42, "alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{name: "cookie", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: access})
		}, status: http.StatusOK},
		{name: "bearer fallback", setup: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+access)
		}, status: http.StatusOK},
		{name: "missing", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "refresh token is not an access token", setup: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+refresh)
		}, status: http.StatusUnauthorized},
		{name: "garbage", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: "not-a-jwt"})
		}, status: http.StatusUnauthorized},
		{name: "stale cookie does not hide bearer", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: "not-a-jwt"})
			req.Header.Set("Authorization", "Bearer "+access)
		}, status: http.StatusOK},
		{name: "stale cookie and bad bearer", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: "not-a-jwt"})
			req.Header.Set("Authorization", "Bearer "+refresh)
		}, status: http.StatusUnauthorized},
		{name: "wrong scheme", setup: func(req *http.Request) {
			req.Header.Set("Authorization", "Basic "+access)
		}, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":42,"username":"alice"}`, w.Body.String())
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36, "malformed ids are replaced by a uuid")
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("connection refused")
}

func (brokenLimiter) Reset(context.Context, string) error { return nil }

func attemptRouter(limiter AttemptLimiter, status *int, opts ...AttemptOption) *gin.Engine {
	r := gin.New()
	r.POST("/login", AttemptLimitMiddleware(limiter, "login", opts...), func(c *gin.Context) {
		c.Status(*status)
	})
	return r
}

func post(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestAttemptLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	status := http.StatusUnauthorized
	r := attemptRouter(redis.NewAttemptLimiter(client, 2, time.Minute), &status, WithResetOnSuccess())

	assert.Equal(t, http.StatusUnauthorized, post(r, "/login").Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/login").Code)

	w := post(r, "/login")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	mr.FastForward(time.Minute + time.Second)

	status = http.StatusOK
	assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	assert.False(t, mr.Exists("attempts:login:192.0.2.1"), "success clears the counter")
}

func TestAttemptLimitMiddleware_FailsOpen(t *testing.T) {
	status := http.StatusOK
	r := attemptRouter(brokenLimiter{}, &status)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/login").Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(ctx, 0.001, 2)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimitMiddleware(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/warehouses/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/warehouses/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/warehouses/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
