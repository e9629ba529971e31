package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dealership_app_echo/internal/handlers"
	appmw "dealership_app_echo/internal/middleware"
	"dealership_app_echo/internal/repository"
	"dealership_app_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Redis backs the summary cache and the per-contract write locks.
	// Without it a single server process still serializes through the DB.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer cache.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set, running without cache or contract locks")
	}

	repo := repository.NewGormContractRepository(db)
	contractSvc := services.NewContractService(repo, cache, log.Logger)
	ledgerSvc := services.NewLedgerService(repo, cache, log.Logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = appmw.CustomErrorHandler

	// The identity provider is external; the built-in verifier only trusts a
	// pre-authenticated gateway. See middleware.TokenVerifier.
	var verifier appmw.TokenVerifier = appmw.HeaderVerifier{}
	if os.Getenv("AUTH_GATEWAY_MODE") == "" {
		log.Warn().Msg("AUTH_GATEWAY_MODE not set; using gateway header verifier")
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db)
	vehicleHandler := handlers.NewVehicleHandler(db)
	planHandler := handlers.NewPlanHandler()
	contractHandler := handlers.NewContractHandler(contractSvc)
	paymentHandler := handlers.NewPaymentHandler(ledgerSvc, contractSvc)
	dashboardHandler := handlers.NewDashboardHandler(ledgerSvc)

	api := e.Group("/api")
	api.Use(appmw.RequireAuth(verifier))

	// Users
	api.GET("/users", userHandler.ListUsers)
	api.POST("/users", userHandler.CreateUser)
	api.GET("/users/:id", userHandler.GetUser)

	// Vehicles and pricing
	api.POST("/vehicles", vehicleHandler.CreateVehicle)
	api.GET("/vehicles", vehicleHandler.ListVehicles)
	api.POST("/vehicles/estimate", vehicleHandler.EstimatePrice)

	// Financing plans
	api.POST("/plans/preview", planHandler.PreviewPlan)
	api.GET("/plans/tenors", planHandler.SupportedTenors)

	// Contracts and their invoice schedules
	api.POST("/contracts", contractHandler.CreateContract)
	api.GET("/contracts", contractHandler.ListContracts)
	api.GET("/contracts/:id", contractHandler.GetContract)
	api.GET("/contracts/:id/invoices", contractHandler.ListContractInvoices)
	api.GET("/contracts/:id/chain", contractHandler.VerifyContractChain)
	api.POST("/contracts/:id/reschedule", contractHandler.RescheduleContract)
	api.POST("/contracts/:id/cancel", contractHandler.CancelContract)

	// Payments and late fees
	api.POST("/contracts/:id/payments", paymentHandler.RecordPayment)
	api.POST("/payments/:id/verify", paymentHandler.VerifyPayment)
	api.POST("/invoices/:id/late-fee", paymentHandler.ApplyLateFee)

	// Dashboard
	api.GET("/dashboard/summary", dashboardHandler.FinancialSummary)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("Server starting")
	if err := e.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
