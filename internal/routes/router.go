package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warehouse-manager/internal/config"
	"warehouse-manager/internal/delivery/http/handler"
	"warehouse-manager/internal/logger"
	"warehouse-manager/internal/middleware"
	"warehouse-manager/internal/usecase/user"
	"warehouse-manager/internal/usecase/warehouse"
)

// HealthChecker is satisfied by *postgres.DB.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are the already-constructed services the router exposes.
// AttemptLimiter and Registry are optional.
type Dependencies struct {
	Config           *config.Config
	DB               HealthChecker
	Tokens           middleware.TokenVerifier
	UserService      *user.Service
	WarehouseService *warehouse.Service
	AttemptLimiter   middleware.AttemptLimiter
	Registry         *prometheus.Registry
}

// SetupRoutes builds the engine. ctx bounds background work such as the
// rate limiter sweeper.
func SetupRoutes(ctx context.Context, deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order: recovery, request ID, logging, security headers, CORS, metrics, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware("/health", "/metrics"))
	router.Use(middleware.SecurityHeadersMiddleware(cfg.Cookie.Secure))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	if cfg.Metrics.Enabled && deps.Registry != nil {
		router.Use(middleware.NewHTTPMetrics(deps.Registry).Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	if cfg.RateLimit.GeneralRPS > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
		router.Use(middleware.RateLimitMiddleware(limiter))
	}

	router.GET("/health", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.DB.Health(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	requireAuth := middleware.AuthMiddleware(deps.Tokens, cfg.Cookie.AccessName)

	var guards handler.AuthGuards
	if deps.AttemptLimiter != nil {
		guards = handler.AuthGuards{
			Login:          middleware.AttemptLimitMiddleware(deps.AttemptLimiter, "login", middleware.WithResetOnSuccess()),
			ForgotPassword: middleware.AttemptLimitMiddleware(deps.AttemptLimiter, "forgot-password"),
			ResetPassword:  middleware.AttemptLimitMiddleware(deps.AttemptLimiter, "reset-password"),
		}
	}

	userHandler := handler.NewUserHandler(deps.UserService, cfg.Cookie, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	userHandler.RegisterRoutes(&router.RouterGroup, requireAuth, guards)

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		handler.NewWarehouseHandler(deps.WarehouseService).RegisterRoutes(api)
	}

	logger.Info("All routes initialized")
	return router
}
