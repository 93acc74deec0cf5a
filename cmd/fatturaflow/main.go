package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fatturaflow/internal/api"
	"fatturaflow/internal/api/handlers"
	"fatturaflow/internal/fattura"
	"fatturaflow/internal/models"
	"fatturaflow/internal/repository"
	"fatturaflow/internal/service"
	"fatturaflow/internal/storage"
	"fatturaflow/pkg/auth"
	"fatturaflow/pkg/config"
	"fatturaflow/pkg/logger"
	"fatturaflow/pkg/postgres"

	"go.uber.org/zap"
)

// @title FatturaFlow API
// @version 1.0
// @description Import pipeline for Italian electronic invoices (FatturaPA)

// @host localhost:8080
// @BasePath /api/v1

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
	appLogger.Info("Starting FatturaFlow service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(&cfg.Database, "migrations", appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	blobs, err := newBlobStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	companyRepo := repository.NewCompanyRepository(db, appLogger)
	counterpartyRepo := repository.NewCounterpartyRepository(db, appLogger)
	batchRepo := repository.NewBatchRepository(db, appLogger)
	invoiceRepo := repository.NewInvoiceRepository(db, appLogger)
	fileRepo := repository.NewImportFileRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	authService := service.NewAuthService(companyRepo, jwtManager, appLogger)
	invoiceService := service.NewInvoiceService(invoiceRepo, appLogger)

	var fallback service.FallbackParser
	if cfg.OpenAI.APIKey != "" {
		fallback = service.NewFallbackService(
			cfg.OpenAI.APIKey, "", cfg.OpenAI.Model,
			cfg.OpenAI.Temperature, cfg.OpenAI.MaxRetries, cfg.OpenAI.Timeout,
			appLogger,
		)
	} else {
		appLogger.Warn("OPENAI_API_KEY not set, AI fallback disabled")
	}

	var registry service.RegistryLookup
	if cfg.Registry.BaseURL != "" {
		registry = service.NewRegistryService(
			cfg.Registry.BaseURL, cfg.Registry.Timeout, cfg.Registry.MaxRetries,
			appLogger,
		)
	}

	classifier := fattura.NewClassifier(models.Direction(cfg.Import.DefaultDirection))

	importService := service.NewImportService(
		companyRepo, batchRepo, fileRepo, invoiceRepo, counterpartyRepo,
		blobs, fallback, registry, classifier, cfg.Import.MaxZipEntries,
		appLogger,
	)
	importService.Start(ctx, cfg.Import.FallbackWorkers)

	quarantineService := service.NewQuarantineService(
		companyRepo, fileRepo, blobs, importService, fallback, appLogger,
	)

	authHandler := handlers.NewAuthHandler(authService, appLogger)
	importHandler := handlers.NewImportHandler(importService, appLogger)
	quarantineHandler := handlers.NewQuarantineHandler(quarantineService, appLogger)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, appLogger)

	app := api.SetupRouter(authHandler, importHandler, quarantineHandler, invoiceHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
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
	importService.Stop()
	cancel()
}

func newBlobStore(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (storage.BlobStore, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "s3":
		appLogger.Info("Using S3 blob storage", zap.String("bucket", cfg.Storage.Bucket))
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
	case "fs", "":
		return storage.NewFsStore(cfg.Storage.FsRoot)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
