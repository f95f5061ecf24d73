package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbanking "github.com/buchmeister/backend/internal/application/banking"
	appbilling "github.com/buchmeister/backend/internal/application/billing"
	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	apppartner "github.com/buchmeister/backend/internal/application/partner"
	"github.com/buchmeister/backend/internal/infrastructure/config"
	"github.com/buchmeister/backend/internal/infrastructure/logger"
	"github.com/buchmeister/backend/internal/infrastructure/persistence"
	"github.com/buchmeister/backend/internal/infrastructure/storage"
	"github.com/buchmeister/backend/internal/infrastructure/telemetry"
	"github.com/buchmeister/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SamplingRatio:  cfg.Telemetry.SamplingRatio,
		ServiceName:    cfg.App.Name,
		ServiceVersion: version,
	}
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		if err := logsProvider.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to shutdown logger provider", zap.Error(err))
		}
	}()
	log = logsProvider.BridgeZap(log, cfg.App.Name, logger.ParseLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.DBName); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	objectStorage, err := buildObjectStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	definitions, err := cfg.NumberingDefinitions()
	if err != nil {
		log.Fatal("Invalid number sequence configuration", zap.Error(err))
	}

	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	numbers := appnumbering.NewService(sequenceRepo, definitions)

	services := router.Services{
		Invoices:     appbilling.NewInvoiceService(invoiceRepo, customerRepo, numbers, scope),
		Quotes:       appbilling.NewQuoteService(quoteRepo, invoiceRepo, customerRepo, numbers, scope),
		Customers:    apppartner.NewCustomerService(customerRepo, numbers),
		Accounts:     appbanking.NewAccountService(accountRepo),
		Transactions: appbanking.NewTransactionService(accountRepo, transactionRepo),
		Imports:      appbanking.NewImportService(accountRepo, transactionRepo),
		Attachments:  appbanking.NewAttachmentService(transactionRepo, attachmentRepo, objectStorage),
		Numbers:      numbers,
	}

	engine := router.New(services, router.Options{
		Config:  cfg,
		Logger:  log,
		DB:      db.DB,
		Version: version,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// buildObjectStorage selects the attachment storage backend. The stub
// keeps blobs in memory and is rejected by config validation outside
// development.
func buildObjectStorage(cfg *config.Config, log *zap.Logger) (appbanking.ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "s3":
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	case "stub":
		log.Warn("Using in-memory object storage; attachments are lost on restart")
		return storage.NewStubObjectStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Storage.Provider)
	}
}
