package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	accountUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/account"
	ledgerUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/ledger"
	purchaseUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/purchase"

	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/cache"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/database"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/database/migration"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/events"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/logger"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/repository"
	timeProvider "github.com/creatorhub/token-ledger/internal/infrastructure/adapter/time"
	"github.com/creatorhub/token-ledger/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	// Database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = dbManager.Close() }()

	migrationMgr := migration.NewMigrationManager(dbManager.DB(), appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Event publisher
	var publisher coreport.EventPublisher
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.URL, appLogger, tp)
		if err != nil {
			appLogger.Error("Failed to connect to RabbitMQ, events disabled", map[string]any{
				"error": err.Error(),
			})
			publisher = events.NewNoopPublisher()
		} else {
			publisher = amqpPublisher
		}
	} else {
		publisher = events.NewNoopPublisher()
	}
	defer func() { _ = publisher.Close() }()

	// Unlock cache
	var unlockCache purchaseUseCase.UnlockCache
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		unlockCache = cache.NewRedisUnlockCache(redisClient, cfg.Cache.TTL, appLogger)
		defer func() { _ = redisClient.Close() }()
	}

	// Repositories and unit of work
	accountRepo := repository.NewAccountRepository(dbManager.DB(), tp, appLogger)
	entryRepo := repository.NewEntryRepository(dbManager.DB(), appLogger)
	itemRepo := repository.NewItemRepository(dbManager.DB(), appLogger)
	unlockRepo := repository.NewUnlockRepository(dbManager.DB(), appLogger)
	uow := database.NewUnitOfWork(dbManager.DB(), appLogger, tp)

	// Use cases
	accountService := accountUseCase.NewService(uow, accountRepo, entryRepo, tp, appLogger)
	transferService := ledgerUseCase.NewService(uow, tp, appLogger, publisher, cfg.Ledger.PlatformAccountID)
	purchaseService := purchaseUseCase.NewService(
		uow,
		itemRepo,
		unlockRepo,
		transferService,
		unlockCache,
		tp,
		appLogger,
		publisher,
		int(cfg.Ledger.FeeBps),
	)

	// The platform commission account must exist before the first fee entry
	if err := migration.SeedPlatformAccount(context.Background(), accountService, cfg.Ledger.PlatformAccountID); err != nil {
		appLogger.Error("Failed to seed platform account", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// API handlers
	accountHandler := handler.NewAccountHandler(accountService, appLogger)
	transferHandler := handler.NewTransferHandler(transferService, int(cfg.Ledger.FeeBps), appLogger)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, appLogger)
	healthHandler := handler.NewHealthHandler(dbManager, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, accountHandler, transferHandler, purchaseHandler, healthHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Database.Host == "" {
		missingConfigs = append(missingConfigs, "database.host (or TL_DB_HOST environment variable)")
	}
	if cfg.Database.Username == "" {
		missingConfigs = append(missingConfigs, "database.username (or TL_DB_USERNAME environment variable)")
	}
	if cfg.Database.Database == "" {
		missingConfigs = append(missingConfigs, "database.database (or TL_DB_NAME environment variable)")
	}

	if cfg.Ledger.PlatformAccountID == "" {
		missingConfigs = append(missingConfigs, "ledger.platformAccountId")
	}
	if cfg.Ledger.FeeBps < 0 || cfg.Ledger.FeeBps >= 10000 {
		return fmt.Errorf("ledger.feeBps must be between 0 and 9999, got %d", cfg.Ledger.FeeBps)
	}

	if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	return nil
}
