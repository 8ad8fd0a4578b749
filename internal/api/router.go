package api

import (
	"errors"

	"fin-extractor/docs"
	"fin-extractor/internal/api/handlers"
	"fin-extractor/pkg/auth"
	"fin-extractor/pkg/config"
	"fin-extractor/pkg/metrics"
	"fin-extractor/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Dependencies struct {
	AuthHandler        *handlers.AuthHandler
	TransactionHandler *handlers.TransactionHandler
	JWTManager         *auth.JWTManager
	Revocations        middleware.RevocationChecker
	Members            middleware.MembershipChecker
	Metrics            *metrics.Metrics
	// RateLimitStorage backs the per-user limiters; nil keeps them in process.
	RateLimitStorage fiber.Storage
	Logger           *zap.Logger
}

func SetupRouter(cfg *config.Config, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// CORS first so preflight requests never reach auth
	corsCfg := cors.Config{
		AllowOrigins: cfg.Server.ClientOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}
	if cfg.Server.ClientOrigin != "*" {
		corsCfg.AllowCredentials = true
	}
	app.Use(cors.New(corsCfg))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(deps.Logger))

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	bearer := middleware.BearerMiddleware(deps.JWTManager, deps.Revocations, deps.Logger)
	session := middleware.SessionMiddleware(deps.JWTManager, deps.Revocations, deps.Members, deps.Logger)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", deps.AuthHandler.Register)
	authGroup.Post("/login", deps.AuthHandler.Login)
	authGroup.Post("/refresh", deps.AuthHandler.RefreshToken)
	authGroup.Post("/logout", bearer, deps.AuthHandler.Logout)
	authGroup.Post("/organization/set-active", bearer, deps.AuthHandler.SetActiveOrganization)

	extractLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Route:   "extract",
		Max:     cfg.RateLimit.ExtractLimit,
		Window:  cfg.RateLimit.Window,
		Storage: deps.RateLimitStorage,
	}, deps.Metrics)
	saveLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Route:   "save",
		Max:     cfg.RateLimit.SaveLimit,
		Window:  cfg.RateLimit.Window,
		Storage: deps.RateLimitStorage,
	}, deps.Metrics)

	transactions := api.Group("/transactions", session)
	transactions.Post("/extract", extractLimit, deps.TransactionHandler.Extract)
	transactions.Post("/save", saveLimit, deps.TransactionHandler.Save)
	transactions.Get("", deps.TransactionHandler.ListTransactions)
	transactions.Get("/:id", deps.TransactionHandler.GetTransaction)

	return app
}
