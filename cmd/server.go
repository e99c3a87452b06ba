package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"warehouse-manager/internal/config"
	domainWarehouse "warehouse-manager/internal/domain/warehouse"
	"warehouse-manager/internal/infrastructure/cache/redis"
	"warehouse-manager/internal/infrastructure/database/postgres"
	"warehouse-manager/internal/infrastructure/events"
	"warehouse-manager/internal/infrastructure/mail"
	"warehouse-manager/internal/logger"
	"warehouse-manager/internal/middleware"
	"warehouse-manager/internal/routes"
	"warehouse-manager/internal/usecase/user"
	"warehouse-manager/internal/usecase/warehouse"
	"warehouse-manager/pkg/mqtt"
	"warehouse-manager/pkg/security"
)

const shutdownTimeout = 30 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting application", zap.String("environment", cfg.Server.Environment))

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := db.MigrateUp(); err != nil {
			logger.Error("Failed to migrate database", zap.Error(err))
			return err
		}
	}

	hasher, err := security.NewHasher(cfg.Password.Algorithm, cfg.Password.BcryptCost)
	if err != nil {
		return err
	}
	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	resets, err := security.NewResetTokenSigner(cfg.JWT.Secret, cfg.Reset.Salt, time.Now)
	if err != nil {
		return err
	}

	limiter, closeRedis := attemptLimiter(ctx, cfg)
	defer closeRedis()

	publisher, closeMQTT := eventPublisher(cfg)
	defer closeMQTT()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userService := user.NewService(postgres.NewUserRepository(db), hasher, tokens, resets, mail.New(cfg.SMTP), cfg)
	warehouseService := warehouse.NewService(postgres.NewWarehouseRepository(db), publisher)

	router := routes.SetupRoutes(ctx, routes.Dependencies{
		Config:           cfg,
		DB:               db,
		Tokens:           tokens,
		UserService:      userService,
		WarehouseService: warehouseService,
		AttemptLimiter:   limiter,
		Registry:         registry,
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Failed to start server", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server exited properly")
	return nil
}

// attemptLimiter returns nil when Redis is not configured or unreachable;
// login and reset endpoints then run without attempt limits.
func attemptLimiter(ctx context.Context, cfg *config.Config) (middleware.AttemptLimiter, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis not configured, attempt limiting disabled")
		return nil, func() {}
	}

	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, attempt limiting disabled", zap.Error(err))
		return nil, func() {}
	}

	return redis.NewAttemptLimiter(client, cfg.Redis.AttemptLimit, cfg.Redis.AttemptWindow), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}

func eventPublisher(cfg *config.Config) (domainWarehouse.EventPublisher, func()) {
	if cfg.MQTT.Broker == "" {
		logger.Info("MQTT broker not configured, warehouse events disabled")
		return events.NopPublisher{}, func() {}
	}

	client := mqtt.NewClient(
		mqtt.DefaultConfig(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password),
		logger.Named("mqtt"),
	)
	if err := client.Connect(); err != nil {
		logger.Warn("MQTT broker unavailable, warehouse events disabled", zap.Error(err))
		return events.NopPublisher{}, func() {}
	}

	return events.NewMQTTPublisher(client, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS), client.Disconnect
}
