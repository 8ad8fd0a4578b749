package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fin-extractor/internal/api"
	"fin-extractor/internal/api/handlers"
	"fin-extractor/internal/repository"
	"fin-extractor/internal/service"
	"fin-extractor/pkg/auth"
	"fin-extractor/pkg/config"
	"fin-extractor/pkg/logger"
	"fin-extractor/pkg/metrics"
	"fin-extractor/pkg/postgres"

	"github.com/gofiber/storage/memory/v2"
	"go.uber.org/zap"
)

// @title Fin Extractor API
// @version 1.0
// @description Turns bank SMS, e-mail receipts and statement lines into structured transactions.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting fin-extractor service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, appLogger); err != nil {
			appLogger.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	orgRepo := repository.NewOrganizationRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Rate-limit counters and revoked token IDs live in one in-process store.
	// Any fiber.Storage (e.g. Redis) can replace it for multi-instance deployments.
	storage := memory.New()
	defer storage.Close()
	revocations := auth.NewRevocationList(storage)

	appMetrics := metrics.New()

	authService := service.NewAuthService(userRepo, orgRepo, jwtManager, revocations, logger.Named("auth"))
	txService := service.NewTransactionService(txRepo, appMetrics, logger.Named("transactions"))

	app := api.SetupRouter(cfg, api.Dependencies{
		AuthHandler:        handlers.NewAuthHandler(authService, appLogger),
		TransactionHandler: handlers.NewTransactionHandler(txService, appLogger),
		JWTManager:         jwtManager,
		Revocations:        revocations,
		Members:            authService,
		Metrics:            appMetrics,
		RateLimitStorage:   storage,
		Logger:             appLogger,
	})

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting",
			zap.String("address", addr),
			zap.String("client_origin", cfg.Server.ClientOrigin),
		)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
