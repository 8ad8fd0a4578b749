package main

import (
	"context"
	"log"

	"fin-extractor/internal/dto"
	"fin-extractor/internal/repository"
	"fin-extractor/internal/service"
	"fin-extractor/pkg/auth"
	"fin-extractor/pkg/config"
	"fin-extractor/pkg/logger"
	"fin-extractor/pkg/metrics"
	"fin-extractor/pkg/postgres"

	"github.com/alecthomas/kong"
	"github.com/gofiber/storage/memory/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sampleMessages covers every extraction path at least once.
var sampleMessages = []string{
	"Amount: 1,500.50 Description: Starbucks ₹ 1,500.50 debited Bal 45,000",
	"Sent 50.00 USD to Amazon.com on Jan 9th",
	"₹ 2,000 debited from a/c XX1234 on 12/03/2025 at SWIGGY. Available Balance → ₹18,250.75",
	"Paid 12.99 EUR to Spotify on Mar 1st",
	"₹450Dr UPI/ZOMATO 15 Feb 2025 Bal 9,120.00",
	"Your a/c was debited. Amount: 780.00 Balance after transaction: 4,220.00 on 2025-02-20",
}

var cli struct {
	Email    string `help:"Demo user e-mail." default:"demo@fin-extractor.local"`
	Password string `help:"Demo user password." default:"demo-password"`
	Name     string `help:"Demo user display name." default:"Demo"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Create a demo user with a workspace and sample transactions."),
	)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	authService := service.NewAuthService(
		repository.NewUserRepository(db, appLogger),
		repository.NewOrganizationRepository(db, appLogger),
		jwtManager,
		auth.NewRevocationList(memory.New()),
		appLogger,
	)
	txService := service.NewTransactionService(repository.NewTransactionRepository(db, appLogger), metrics.New(), appLogger)

	appLogger.Info("Starting database seeding...")

	// Register is idempotent, so re-running the seeder reuses the demo user.
	session, err := authService.Register(ctx, &dto.RegisterRequest{
		Email:    cli.Email,
		Password: cli.Password,
		Name:     cli.Name,
	})
	if err != nil {
		appLogger.Fatal("Failed to register demo user", zap.Error(err))
	}

	userID := uuid.MustParse(session.User.ID)
	orgID := uuid.MustParse(session.ActiveOrganizationID)

	saved := 0
	for _, msg := range sampleMessages {
		result := txService.Extract(msg)
		if _, err := txService.Save(ctx, result, userID, orgID); err != nil {
			appLogger.Warn("Skipping sample", zap.String("text", msg), zap.Error(err))
			continue
		}
		saved++
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.String("email", cli.Email),
		zap.String("organization_id", orgID.String()),
		zap.Int("transactions", saved),
	)
}
