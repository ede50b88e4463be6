package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/greenbush/returns-api/internal/application/service"
	"github.com/greenbush/returns-api/internal/config"
	"github.com/greenbush/returns-api/internal/infrastructure/cache"
	"github.com/greenbush/returns-api/internal/infrastructure/database"
	"github.com/greenbush/returns-api/internal/infrastructure/repository"
	"github.com/greenbush/returns-api/internal/job"
	"github.com/greenbush/returns-api/internal/presentation/http/handler"
	"github.com/greenbush/returns-api/internal/presentation/http/routes"
	"github.com/greenbush/returns-api/pkg/metrc"
	"github.com/greenbush/returns-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize structured logger
	var logger *zap.Logger
	var err error
	if cfg.App.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	creditRepo := repository.NewStoreCreditRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize balance cache
	var balanceCache cache.BalanceCache = cache.NoopBalanceCache{}
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisBalanceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Warn("Redis unavailable, balance caching disabled", zap.Error(err))
		} else {
			balanceCache = redisCache
			defer redisCache.Close()
		}
	}

	// Initialize destruction reporter
	var reporter metrc.Reporter = metrc.NewNoopReporter()
	if cfg.Metrc.Enabled {
		reporter = metrc.NewClient(metrc.ClientConfig{
			BaseURL:       cfg.Metrc.BaseURL,
			APIKey:        cfg.Metrc.APIKey,
			LicenseNumber: cfg.Metrc.LicenseNumber,
			Timeout:       cfg.Metrc.Timeout,
		})
	}

	// Initialize services
	complianceService := service.NewComplianceService(productRepo, logger)
	creditService := service.NewCreditService(creditRepo, customerRepo, sequenceRepo, balanceCache, logger)
	returnService := service.NewReturnService(
		returnRepo, saleRepo, productRepo, customerRepo, sequenceRepo,
		complianceService, creditService, reporter, cfg.Metrc.Timeout, logger,
	)
	customerService := service.NewCustomerService(customerRepo)

	// Start the credit expiry sweep job
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	expiryJob := job.NewCreditExpiryJob(creditService, cfg.Jobs.CreditSweepInterval, logger)
	go expiryJob.Start(ctx)
	defer expiryJob.Stop()

	// Initialize handlers
	handlers := &routes.Handlers{
		Return:   handler.NewReturnHandler(returnService),
		Credit:   handler.NewCreditHandler(creditService),
		Customer: handler.NewCustomerHandler(customerService, creditService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
	})

	logger.Info("starting server",
		zap.String("service", cfg.App.Name),
		zap.String("port", cfg.App.Port),
		zap.String("env", cfg.App.Env))

	if err := router.Run(":" + cfg.App.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
